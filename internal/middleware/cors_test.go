package middleware

import (
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gofiber/fiber/v3"
)

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty allows all", "", []string{"*"}},
		{"star", "*", []string{"*"}},
		{"list trimmed", " https://a.example , https://b.example ", []string{"https://a.example", "https://b.example"}},
		{"blank entries dropped", "https://a.example,,", []string{"https://a.example"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseOrigins(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseOrigins(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewCORS_AllowsAnyOrigin(t *testing.T) {
	app := fiber.New()
	app.Use(NewCORS("*"))
	app.Get("/api/channel-details", func(c fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/api/channel-details", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
