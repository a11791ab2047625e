package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/circlehole/internal/adapters/http"
	"github.com/samirrijal/circlehole/internal/core/domain"
	"github.com/samirrijal/circlehole/internal/core/usecases"
	"github.com/samirrijal/circlehole/internal/pkg/config"
)

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	d := &handler.Dependencies{
		Polygons: usecases.NewPolygonService(nil, nil, usecases.PolygonOptions{EnforceOppositeWinding: true}),
		Circle: config.CircleConfig{
			CenterLat: 37.78,
			CenterLon: -122.41,
			Radius:    50,
			Points:    64,
			MaxPoints: 360,
		},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func get(t *testing.T, app *fiber.App, url string) (int, []byte, map[string]string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", url, nil), -1)
	if err != nil {
		t.Fatalf("request %s: %v", url, err)
	}
	defer resp.Body.Close()
	headers := map[string]string{}
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	return resp.StatusCode, readBody(t, resp.Body), headers
}

type featureBody struct {
	Type     string `json:"type"`
	Geometry struct {
		Type        string          `json:"type"`
		Coordinates [][][2]float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// ---- Boundary ----

func TestBoundary_Success(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, headers := get(t, app, "/v1/boundary")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var res handler.RingResponse
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Points) != 9 {
		t.Errorf("expected 9 boundary points, got %d", len(res.Points))
	}
	if res.Winding != domain.CounterClockwise {
		t.Errorf("expected counter_clockwise boundary, got %s", res.Winding)
	}
	if res.Spec != nil {
		t.Error("boundary response should not carry a circle spec")
	}
	if got := headers["Cache-Control"]; got != "public, max-age=86400" {
		t.Errorf("expected long-lived Cache-Control, got %q", got)
	}
}

// ---- Ring ----

func TestRing_Success(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, _ := get(t, app, "/v1/rings/circle?lat=10&lon=20&radius=1000&points=12")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var res handler.RingResponse
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Points) != 12 {
		t.Errorf("expected 12 points, got %d", len(res.Points))
	}
	if res.Spec == nil || res.Spec.Points != 12 || res.Spec.Radius != 1000 {
		t.Errorf("unexpected spec echo: %+v", res.Spec)
	}
	if res.Winding != domain.CounterClockwise {
		t.Errorf("expected counter_clockwise ring, got %s", res.Winding)
	}
	if res.Bounds.MinLat >= 10 || res.Bounds.MaxLat <= 10 {
		t.Errorf("bounds should straddle the center latitude: %+v", res.Bounds)
	}
}

func TestRing_Defaults(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, _ := get(t, app, "/v1/rings/circle")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var res handler.RingResponse
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Points) != 64 {
		t.Errorf("expected default 64 points, got %d", len(res.Points))
	}
	if res.Spec.Center.Lat != 37.78 || res.Spec.Center.Lon != -122.41 {
		t.Errorf("expected default center, got %+v", res.Spec.Center)
	}
}

func TestRing_FractionalPointsTruncated(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, _ := get(t, app, "/v1/rings/circle?points=7.9")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var res handler.RingResponse
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Points) != 7 {
		t.Errorf("expected 7 points, got %d", len(res.Points))
	}
}

func TestRing_Normalize(t *testing.T) {
	app := setupApp(makeDeps())

	// 50 km around a center on the antimeridian crosses +180.
	status, body, _ := get(t, app, "/v1/rings/circle?lat=0&lon=180&radius=50000&points=16&normalize=true")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var res handler.RingResponse
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i, p := range res.Points {
		if p.Lon < -180 || p.Lon >= 180 {
			t.Errorf("point %d longitude %v not normalized", i, p.Lon)
		}
	}
}

func TestRing_GeoJSON(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, headers := get(t, app, "/v1/rings/circle?points=6&format=geojson")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if ct := headers["Content-Type"]; ct != "application/geo+json" {
		t.Errorf("expected application/geo+json, got %q", ct)
	}

	var f featureBody
	if err := json.Unmarshal(body, &f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.Geometry.Type != "Polygon" || len(f.Geometry.Coordinates) != 1 {
		t.Fatalf("expected single-ring Polygon, got %s with %d rings", f.Geometry.Type, len(f.Geometry.Coordinates))
	}
	ring := f.Geometry.Coordinates[0]
	if len(ring) != 7 {
		t.Errorf("expected 6 points plus closing point, got %d", len(ring))
	}
}

func TestRing_BadRequests(t *testing.T) {
	app := setupApp(makeDeps())

	tests := []struct {
		name string
		url  string
	}{
		{"lat out of range", "/v1/rings/circle?lat=91"},
		{"lon out of range", "/v1/rings/circle?lon=-181"},
		{"negative radius", "/v1/rings/circle?radius=-1"},
		{"zero points", "/v1/rings/circle?points=0"},
		{"fraction below one", "/v1/rings/circle?points=0.5"},
		{"too many points", "/v1/rings/circle?points=361"},
		{"not a number", "/v1/rings/circle?lat=north"},
		{"NaN", "/v1/rings/circle?radius=NaN"},
		{"infinite", "/v1/rings/circle?radius=Inf"},
		{"unknown format", "/v1/rings/circle?format=kml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := get(t, app, tt.url)
			if status != 400 {
				t.Fatalf("expected 400, got %d: %s", status, body)
			}
			var apiErr handler.APIError
			if err := json.Unmarshal(body, &apiErr); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if apiErr.Code != "bad_request" || apiErr.Message == "" {
				t.Errorf("unexpected error body: %+v", apiErr)
			}
		})
	}
}

// ---- Circle hole ----

func TestCircleHole_JSON(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, headers := get(t, app, "/v1/polygons/circle-hole?points=8")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var p domain.PolygonWithHole
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Outer) != 9 {
		t.Errorf("expected 9 outer points, got %d", len(p.Outer))
	}
	if len(p.Hole) != 8 {
		t.Errorf("expected 8 hole points, got %d", len(p.Hole))
	}
	if p.OuterWinding != domain.CounterClockwise || p.HoleWinding != domain.Clockwise {
		t.Errorf("expected opposite windings, got outer=%s hole=%s", p.OuterWinding, p.HoleWinding)
	}
	if got := headers["Cache-Control"]; got != "public, max-age=3600" {
		t.Errorf("expected Cache-Control max-age=3600, got %q", got)
	}
}

func TestCircleHole_PassThroughWinding(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Polygons = usecases.NewPolygonService(nil, nil, usecases.PolygonOptions{EnforceOppositeWinding: false})
	})
	app := setupApp(deps)

	status, body, _ := get(t, app, "/v1/polygons/circle-hole?points=8")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var p domain.PolygonWithHole
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.HoleWinding != domain.CounterClockwise {
		t.Errorf("expected generated counter_clockwise hole, got %s", p.HoleWinding)
	}
}

func TestCircleHole_GeoJSON(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, _ := get(t, app, "/v1/polygons/circle-hole?points=10&format=geojson")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var f featureBody
	if err := json.Unmarshal(body, &f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.Type != "Feature" || f.Geometry.Type != "Polygon" {
		t.Fatalf("expected Polygon Feature, got %s/%s", f.Type, f.Geometry.Type)
	}
	if len(f.Geometry.Coordinates) != 2 {
		t.Fatalf("expected outer ring and one hole, got %d rings", len(f.Geometry.Coordinates))
	}
	for i, ring := range f.Geometry.Coordinates {
		if ring[0] != ring[len(ring)-1] {
			t.Errorf("ring %d is not closed", i)
		}
	}
	if n := len(f.Geometry.Coordinates[1]); n != 11 {
		t.Errorf("expected 10 hole points plus closing point, got %d", n)
	}
	if f.Properties["hole_winding"] != "clockwise" {
		t.Errorf("expected hole_winding property clockwise, got %v", f.Properties["hole_winding"])
	}
}

func TestCircleHole_ZeroRadius(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, _ := get(t, app, "/v1/polygons/circle-hole?radius=0&points=4")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var p domain.PolygonWithHole
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i, pt := range p.Hole {
		if math.Abs(pt.Lat-p.Spec.Center.Lat) > 1e-9 || math.Abs(pt.Lon-p.Spec.Center.Lon) > 1e-9 {
			t.Errorf("point %d = %+v, want the center", i, pt)
		}
	}
	if p.HoleWinding != domain.Degenerate {
		t.Errorf("expected degenerate hole, got %s", p.HoleWinding)
	}
}

func TestCircleHole_BadRequest(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, _ := get(t, app, "/v1/polygons/circle-hole?points=-3")
	if status != 400 {
		t.Fatalf("expected 400, got %d: %s", status, body)
	}
}

// ---- Middleware ----

func TestETag_NotModified(t *testing.T) {
	app := setupApp(makeDeps())

	_, _, headers := get(t, app, "/v1/boundary")
	etag := headers["Etag"]
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req := httptest.NewRequest("GET", "/v1/boundary", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

func TestAPIVersionHeader(t *testing.T) {
	app := setupApp(makeDeps())

	_, _, headers := get(t, app, "/v1/health")
	if got := headers["X-Api-Version"]; got != handler.APIVersion {
		t.Errorf("expected X-API-Version %s, got %q", handler.APIVersion, got)
	}
	if got := headers["X-Content-Type-Options"]; got != "nosniff" {
		t.Errorf("expected nosniff, got %q", got)
	}
}

// TestAccessLogMiddleware verifies structured access logging is emitted.
func TestAccessLogMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(handler.AccessLogMiddleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "test-req-123")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	body := readBody(t, resp.Body)
	if !strings.Contains(string(body), "ok") {
		t.Errorf("expected response body to contain 'ok', got %s", string(body))
	}
}

// ---- Health ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, headers := get(t, app, "/v1/health")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var res map[string]any
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", res["status"])
	}
	if got := headers["Cache-Control"]; got != "no-cache" {
		t.Errorf("expected no-cache, got %q", got)
	}
}

func TestReady_AdaptersNotConfigured(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, _ := get(t, app, "/v1/ready")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var res struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Checks["nats"] != "not configured" || res.Checks["cache"] != "not configured" {
		t.Errorf("unexpected checks: %v", res.Checks)
	}
}

func TestReady_NoPolygonService(t *testing.T) {
	app := setupApp(makeDeps(func(d *handler.Dependencies) { d.Polygons = nil }))

	status, _, _ := get(t, app, "/v1/ready")
	if status != 503 {
		t.Errorf("expected 503, got %d", status)
	}
}

// ---- GraphQL ----

func postGraphQL(t *testing.T, app *fiber.App, query string) map[string]any {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"query": query})
	req := httptest.NewRequest("POST", "/graphql", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestGraphQL_CircleHole(t *testing.T) {
	app := setupApp(makeDeps())

	out := postGraphQL(t, app, `{ circleHole(points: 8, radius: 100) { radius outer { winding } hole { winding points { lat lon } } } }`)
	if errs, ok := out["errors"]; ok {
		t.Fatalf("unexpected errors: %v", errs)
	}

	data := out["data"].(map[string]any)["circleHole"].(map[string]any)
	if data["radius"].(float64) != 100 {
		t.Errorf("expected radius 100, got %v", data["radius"])
	}
	hole := data["hole"].(map[string]any)
	if hole["winding"] != "clockwise" {
		t.Errorf("expected clockwise hole, got %v", hole["winding"])
	}
	if n := len(hole["points"].([]any)); n != 8 {
		t.Errorf("expected 8 hole points, got %d", n)
	}
	if w := data["outer"].(map[string]any)["winding"]; w != "counter_clockwise" {
		t.Errorf("expected counter_clockwise outer, got %v", w)
	}
}

func TestGraphQL_Boundary(t *testing.T) {
	app := setupApp(makeDeps())

	out := postGraphQL(t, app, `{ boundary { points { lat lon } } }`)
	points := out["data"].(map[string]any)["boundary"].(map[string]any)["points"].([]any)
	if len(points) != 9 {
		t.Errorf("expected 9 points, got %d", len(points))
	}
}

func TestGraphQL_InvalidPoints(t *testing.T) {
	app := setupApp(makeDeps())

	out := postGraphQL(t, app, `{ ring(points: 0) { winding } }`)
	errs, ok := out["errors"].([]any)
	if !ok || len(errs) == 0 {
		t.Fatalf("expected errors, got %v", out)
	}
}

func TestGraphQL_BadBody(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/graphql", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Docs & WebSocket ----

func TestDocs_ServesEmbeddedSpec(t *testing.T) {
	app := setupApp(makeDeps())

	status, body, _ := get(t, app, "/docs/openapi.yaml")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if !strings.Contains(string(body), "title: CircleHole API") {
		t.Error("expected embedded openapi.yaml")
	}
}

func TestWebSocket_RequiresUpgrade(t *testing.T) {
	app := setupApp(makeDeps())

	status, _, _ := get(t, app, "/ws")
	if status != fiber.StatusUpgradeRequired {
		t.Errorf("expected 426, got %d", status)
	}
}
