package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/circlehole/internal/core/domain"
	"github.com/samirrijal/circlehole/internal/pkg/geospatial"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	ringType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Ring",
		Fields: graphql.Fields{
			"winding": &graphql.Field{Type: graphql.String},
			"points":  &graphql.Field{Type: graphql.NewList(geoPointType)},
		},
	})

	polygonType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CircleHole",
		Fields: graphql.Fields{
			"outer":  &graphql.Field{Type: ringType},
			"hole":   &graphql.Field{Type: ringType},
			"radius": &graphql.Field{Type: graphql.Float},
			"center": &graphql.Field{Type: geoPointType},
		},
	})

	circleArgs := graphql.FieldConfigArgument{
		"lat":    &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: deps.Circle.CenterLat},
		"lon":    &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: deps.Circle.CenterLon},
		"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: deps.Circle.Radius},
		"points": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: deps.Circle.Points},
	}

	specFromArgs := func(args map[string]interface{}) (domain.CircleSpec, error) {
		spec := domain.CircleSpec{
			Center: domain.GeoPoint{Lat: args["lat"].(float64), Lon: args["lon"].(float64)},
			Radius: args["radius"].(float64),
			Points: args["points"].(int),
		}
		return spec, checkSpec(spec, deps.Circle.MaxPoints)
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"boundary": &graphql.Field{
				Type:        ringType,
				Description: "The fixed near-global outer ring",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return ringResult(deps.Polygons.Boundary()), nil
				},
			},
			"ring": &graphql.Field{
				Type:        ringType,
				Description: "A circle ring approximated with the given number of points",
				Args:        circleArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					spec, err := specFromArgs(p.Args)
					if err != nil {
						return nil, err
					}
					ring, err := deps.Polygons.Ring(p.Context, spec)
					if err != nil {
						return nil, err
					}
					return ringResult(ring), nil
				},
			},
			"circleHole": &graphql.Field{
				Type:        polygonType,
				Description: "The outer boundary with a circular hole",
				Args:        circleArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					spec, err := specFromArgs(p.Args)
					if err != nil {
						return nil, err
					}
					poly, err := deps.Polygons.CircleHole(p.Context, spec)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"outer":  ringResult(poly.Outer),
						"hole":   ringResult(poly.Hole),
						"radius": poly.Spec.Radius,
						"center": map[string]interface{}{"lat": poly.Spec.Center.Lat, "lon": poly.Spec.Center.Lon},
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func ringResult(r domain.Ring) map[string]interface{} {
	points := make([]map[string]interface{}, len(r))
	for i, p := range r {
		points[i] = map[string]interface{}{"lat": p.Lat, "lon": p.Lon}
	}
	return map[string]interface{}{
		"winding": geospatial.Orientation(r).String(),
		"points":  points,
	}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
