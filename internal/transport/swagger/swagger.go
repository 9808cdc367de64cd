package swagger

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	httpSwagger "github.com/swaggo/http-swagger"
)

func Handler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL("/openapi.yml"),
	)
}

// ValidateContract loads the published OpenAPI document and checks it is
// well formed, so a broken contract surfaces at startup instead of as a
// blank swagger page.
func ValidateContract(ctx context.Context, path string) error {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("load openapi contract: %w", err)
	}

	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("validate openapi contract: %w", err)
	}
	return nil
}
