package globals

import (
	"context"

	"sikola-tools/internal/components/chrono"
	"sikola-tools/internal/components/telemetry"
	"sikola-tools/pkg/restyutil"
)

type key struct{}

// Config is read from sikola.json5 (and sikola.local.json5), every field is optional.
type Config struct {
	Username          string  `json:"username"`
	Password          string  `json:"password"`
	BaseUrl           string  `json:"base_url"`
	CategoryCode      string  `json:"category_code"`
	PageLength        int     `json:"page_length"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	// DisableCloudflareBypass sends requests through the plain transport.
	DisableCloudflareBypass bool `json:"disable_cloudflare_bypass"`
	// IndexDb is the sqlite file courses seen while searching are kept in.
	IndexDb string `json:"index_db"`
}

type Value struct {
	Config    Config
	Tel       telemetry.API
	Clock     chrono.API
	HttpDump  restyutil.MessageOutput
	Telemetry telemetry.Telemetry
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key{}).(*Value)
}
