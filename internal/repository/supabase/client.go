package supabase

import (
	"log"

	supa "github.com/nedpals/supabase-go"

	"github.com/resumeforge/resumeforge/internal/config"
)

// NewClient creates the postgrest client used by the repositories. The
// service key bypasses row level security; all ownership checks happen in
// the service layer.
func NewClient(cfg *config.Configuration) *supa.Client {
	client := supa.CreateClient(cfg.Auth.Supabase.BaseURL, cfg.Auth.Supabase.ServiceKey)
	if client == nil {
		log.Fatalf("failed to create Supabase client")
	}
	return client
}
