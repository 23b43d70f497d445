package agent

import (
	"context"
	"fmt"

	"github.com/Vatsa10/Zomatooo/internal/domain"
	"github.com/Vatsa10/Zomatooo/internal/llm"
	"github.com/Vatsa10/Zomatooo/internal/logging"
	"github.com/Vatsa10/Zomatooo/internal/ordering"
	"github.com/Vatsa10/Zomatooo/internal/schema"
)

// Catalog holds the tool declarations offered to the model: the remote
// ordering service's adapted catalog plus the local cart tools. Built
// once at connection start and immutable afterwards.
type Catalog struct {
	declarations []llm.FunctionDeclaration
	remote       map[string]bool
}

// BuildCatalog fetches the remote tool catalog, adapts each schema for
// the model's function-calling interface, and appends the local cart
// tools. A tool whose schema cannot be adapted is skipped with a
// warning; if no remote tool survives, the catalog is unusable and an
// error is returned.
func BuildCatalog(ctx context.Context, svc ordering.Service, log *logging.Logger) (*Catalog, error) {
	tools, err := svc.Tools(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching tool catalog: %w", err)
	}

	cat := &Catalog{remote: make(map[string]bool)}
	for _, t := range tools {
		adapted, err := schema.Adapt(t.Name, t.InputSchema)
		if err != nil {
			log.Warn().Str("tool", t.Name).Err(err).Msg("skipping tool with unusable schema")
			continue
		}
		cat.declarations = append(cat.declarations, llm.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  adapted,
		})
		cat.remote[t.Name] = true
	}

	if len(cat.declarations) == 0 {
		return nil, fmt.Errorf("no usable tools in catalog (%d advertised)", len(tools))
	}

	cat.declarations = append(cat.declarations, cartDeclarations()...)

	log.Info().Int("remote", len(cat.remote)).Int("total", len(cat.declarations)).Msg("tool catalog ready")
	return cat, nil
}

// Declarations returns the full declaration list for model requests.
func (c *Catalog) Declarations() []llm.FunctionDeclaration {
	return c.declarations
}

// IsRemote reports whether a tool name belongs to the ordering service.
func (c *Catalog) IsRemote(name string) bool {
	return c.remote[name]
}

// catalogFromDescriptors is a test seam: builds a catalog without a
// live service.
func catalogFromDescriptors(descs []domain.ToolDescriptor) *Catalog {
	cat := &Catalog{remote: make(map[string]bool)}
	for _, t := range descs {
		adapted, err := schema.Adapt(t.Name, t.InputSchema)
		if err != nil {
			continue
		}
		cat.declarations = append(cat.declarations, llm.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  adapted,
		})
		cat.remote[t.Name] = true
	}
	cat.declarations = append(cat.declarations, cartDeclarations()...)
	return cat
}
