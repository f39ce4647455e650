package apicontract_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/huynhvq/inventory-tracker/api-contract"
)

func TestContractIsValid(t *testing.T) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(apicontract.GetSpecBytes())
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	t.Run("Should describe the product routes", func(t *testing.T) {
		collection := doc.Paths.Find("/api/products")
		require.NotNil(t, collection)
		assert.NotNil(t, collection.Get)
		assert.NotNil(t, collection.Post)

		item := doc.Paths.Find("/api/products/{id}")
		require.NotNil(t, item)
		assert.NotNil(t, item.Get)
		assert.NotNil(t, item.Put)
		assert.NotNil(t, item.Delete)
	})

	t.Run("Should require all five product fields on create", func(t *testing.T) {
		schema := doc.Components.Schemas["ProductRequest"]
		require.NotNil(t, schema)
		assert.ElementsMatch(t,
			[]string{"name", "sku", "quantity", "price", "category"},
			schema.Value.Required,
		)
	})

	t.Run("Should document not found on item routes", func(t *testing.T) {
		item := doc.Paths.Find("/api/products/{id}")
		require.NotNil(t, item)
		for _, op := range []*openapi3.Operation{item.Get, item.Put, item.Delete} {
			res := op.Responses.Status(http.StatusNotFound)
			assert.NotNil(t, res)
		}
	})
}
