package normalize

import (
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/contracts-checker/constants"
	"github.com/joseph-ayodele/contracts-checker/internal/common"
)

var isoDatePattern = `^\d{4}-\d{2}-\d{2}$`

func centsSchema() map[string]any {
	return map[string]any{"type": "integer", "minimum": 0}
}

func namesSchema() map[string]any {
	return map[string]any{
		"type":     "array",
		"minItems": 1,
		"items":    map[string]any{"type": "string", "minLength": 1},
	}
}

// ContractSchema is the structural contract every typed record must meet
// before rules run against it.
func ContractSchema() map[string]any {
	return map[string]any{
		"$schema":  "https://json-schema.org/draft/2020-12/schema",
		"type":     "object",
		"required": []string{"buyers", "sellers", "property", "price", "financing_type"},
		"properties": map[string]any{
			"buyers":  namesSchema(),
			"sellers": namesSchema(),
			"property": map[string]any{
				"type":     "object",
				"required": []string{"street", "city", "state", "zip"},
				"properties": map[string]any{
					"street": map[string]any{"type": "string", "minLength": 1},
					"city":   map[string]any{"type": "string", "minLength": 1},
					"state":  map[string]any{"type": "string", "minLength": 2, "maxLength": 2},
					"zip":    map[string]any{"type": "string", "minLength": 5},
				},
			},
			"price": map[string]any{
				"type":     "object",
				"required": []string{"total_cents"},
				"properties": map[string]any{
					"total_cents":    centsSchema(),
					"cash_cents":     centsSchema(),
					"financed_cents": centsSchema(),
				},
			},
			"financing_type":      map[string]any{"type": "string", "enum": constants.FinancingTypesAsStrings()},
			"effective_date":      map[string]any{"type": "string", "pattern": isoDatePattern},
			"closing_date":        map[string]any{"type": "string", "pattern": isoDatePattern},
			"option_fee_cents":    centsSchema(),
			"earnest_money_cents": centsSchema(),
			"option_period_days":  map[string]any{"type": "integer", "minimum": 0},
			"escrow_agent":        map[string]any{"type": "string"},
			"title_company":       map[string]any{"type": "string"},
			"special_provisions":  map[string]any{"type": "string"},
			"form_version":        map[string]any{"type": "string"},
			"form_code":           map[string]any{"type": "string"},
		},
	}
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func contractSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = common.CompileSchema("contract.json", ContractSchema())
	})
	return compiledSchema, schemaErr
}
