package hydrate

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

type redisSettings struct {
	Host          string   `conf:"host"`
	Port          int      `conf:"port"`
	SentinelHosts []string `conf:"sentinel_hosts"`
	WaitTimeout   int      `conf:"wait_timeout"`
}

func TestDecoderFromFixtures(t *testing.T) {
	fx := loadFixture(t, "hydrate_groups.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			decoder := NewDecoder(buildOptions(tc)...)

			var result redisSettings
			err := decoder.Decode(Context{Group: tc.Group}, tc.Input, &result)

			if tc.ExpectErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tc.ExpectErr)
				}
				if !strings.Contains(err.Error(), tc.ExpectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.ExpectErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if !reflect.DeepEqual(tc.Expect, result) {
				t.Fatalf("decoded group mismatch:\nwant: %#v\n got: %#v", tc.Expect, result)
			}
		})
	}
}

func TestDecoderRejectsBadTargets(t *testing.T) {
	decoder := NewDecoder()
	var settings redisSettings

	if err := decoder.Decode(Context{}, nil, &settings); err == nil || !strings.Contains(err.Error(), "DEFAULT") {
		t.Fatalf("expected nil payload error naming DEFAULT, got %v", err)
	}
	if err := decoder.Decode(Context{Group: "g"}, map[string]any{}, settings); err == nil {
		t.Fatalf("expected non-pointer target to fail")
	}
}

func TestDecoderDurationsAndCustomTag(t *testing.T) {
	type timeouts struct {
		Response time.Duration `mapstructure:"rpc_response_timeout"`
	}
	decoder := NewDecoder(WithTagName("mapstructure"))

	var out timeouts
	if err := decoder.Decode(Context{}, map[string]any{"rpc_response_timeout": "45s"}, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Response != 45*time.Second {
		t.Fatalf("expected 45s, got %s", out.Response)
	}
}

func TestDecoderHookErrorsAreWrapped(t *testing.T) {
	boom := errors.New("boom")
	decoder := NewDecoder(WithPreHook(func(Context, map[string]any) (map[string]any, error) {
		return nil, boom
	}))

	var out redisSettings
	err := decoder.Decode(Context{Group: "matchmaker_redis"}, map[string]any{}, &out)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped pre-hook error, got %v", err)
	}

	payload := map[string]any{"host": "redis"}
	mutating := NewDecoder(WithPreHook(func(_ Context, p map[string]any) (map[string]any, error) {
		p["host"] = "changed"
		return p, nil
	}))
	if err := mutating.Decode(Context{}, payload, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["host"] != "redis" {
		t.Fatalf("expected caller payload untouched, got %v", payload["host"])
	}
}

func buildOptions(tc fixtureCase) []DecoderOption {
	options := []DecoderOption{}

	for _, optName := range tc.Options {
		switch optName {
		case "strict":
			options = append(options, WithStrictTypes())
		case "error_unused":
			options = append(options, WithErrorUnused())
		}
	}

	for _, hookName := range tc.PreHooks {
		switch hookName {
		case "lower_host":
			options = append(options, WithPreHook(lowerHostPreHook))
		}
	}

	for _, hookName := range tc.PostHooks {
		switch hookName {
		case "default_port":
			options = append(options, WithPostHook(defaultPortPostHook))
		}
	}

	return options
}

func lowerHostPreHook(_ Context, payload map[string]any) (map[string]any, error) {
	if host, ok := payload["host"].(string); ok {
		payload["host"] = strings.ToLower(host)
	}
	return payload, nil
}

func defaultPortPostHook(_ Context, target any) error {
	settings, ok := target.(*redisSettings)
	if !ok {
		return errors.New("unexpected target type")
	}
	if settings.Port == 0 {
		settings.Port = 6379
	}
	return nil
}

type fixture struct {
	Description string        `json:"description"`
	Cases       []fixtureCase `json:"cases"`
}

type fixtureCase struct {
	Name      string         `json:"name"`
	Group     string         `json:"group"`
	Input     map[string]any `json:"input"`
	Expect    redisSettings  `json:"expect"`
	ExpectErr string         `json:"expectErr"`
	PreHooks  []string       `json:"preHooks"`
	PostHooks []string       `json:"postHooks"`
	Options   []string       `json:"options"`
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read hydrate fixture %q: %v", name, err)
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal hydrate fixture %q: %v", name, err)
	}
	return fx
}
