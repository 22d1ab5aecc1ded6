package httpserver

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddProduct(t *testing.T) {
	env := newTestEnv(t)
	ck := env.login(t, "alice")

	rec := env.do(t, http.MethodPost, "/api/products/add", `{"name":"A","price":10.0,"description":"first"}`, ck)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeObject(t, rec)
	assert.Equal(t, "Product added successfully", body["message"])
	prod := body["product"].(map[string]any)
	assert.Equal(t, "A", prod["name"])
	assert.Equal(t, 10.0, prod["price"])
	assert.Equal(t, "first", prod["description"])
	assert.NotZero(t, prod["id"])

	rec = env.do(t, http.MethodPost, "/api/products/add", `{"name":"A","price":3}`, ck)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{
		"message": "For existing products, be sure to enter a new name.",
		"error": "Product with name 'A' already exists"
	}`, rec.Body.String())
}

func TestAddProduct_Validation(t *testing.T) {
	env := newTestEnv(t)
	ck := env.login(t, "alice")

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "no price", body: `{"name":"A"}`, want: `{"message":"Invalid product data","missing_fields":["price"]}`},
		{name: "nothing", body: `{}`, want: `{"message":"Invalid product data","missing_fields":["name","price"]}`},
		{name: "null name", body: `{"name":null,"price":2}`, want: `{"message":"Invalid product data","missing_fields":["name"]}`},
		{name: "string price", body: `{"name":"A","price":"2"}`, want: `{"message":"Invalid product data","invalid_fields":["price"]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/products/add", tc.body, ck)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, tc.want, rec.Body.String())
		})
	}
}

func TestListProducts(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	ck := env.login(t, "alice")
	env.addProduct(t, ck, `{"name":"A","price":10.0}`)
	env.addProduct(t, ck, `{"name":"B","price":5.5}`)

	rec = env.do(t, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeArray(t, rec)
	require.Len(t, items, 2)

	assert.Equal(t, "A", items[0]["name"])
	assert.Equal(t, 10.0, items[0]["price"])
	assert.Equal(t, "B", items[1]["name"])
	assert.Equal(t, 5.5, items[1]["price"])
	for _, it := range items {
		assert.Contains(t, it, "id")
		assert.Contains(t, it, "description")
		assert.Contains(t, it, "created")
		assert.NotContains(t, it, "updated")
	}
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)
	ck := env.login(t, "alice")
	id := env.addProduct(t, ck, `{"name":"A","price":10.0}`)

	rec := env.do(t, http.MethodPost, "/api/products", fmt.Sprintf(`{"id":%d}`, id))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"name":"A","price":10,"description":""}`, id), rec.Body.String())

	// id wins over name
	rec = env.do(t, http.MethodPost, "/api/products", fmt.Sprintf(`{"id":%d,"name":"zzz"}`, id))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/products", `{"name":"A"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeArray(t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0]["name"])

	tests := []struct {
		name string
		body string
		code int
		want string
	}{
		{
			name: "unknown id", body: `{"id":999}`, code: http.StatusNotFound,
			want: `{"message":"Product not found","error":"No product found with ID 999"}`,
		},
		{
			name: "string id", body: `{"id":"1"}`, code: http.StatusBadRequest,
			want: `{"message":"Invalid ID format","error":"ID should be an integer"}`,
		},
		{
			name: "unknown name", body: `{"name":"nope"}`, code: http.StatusNotFound,
			want: `{"message":"No products found","error":"No products found with name 'nope'"}`,
		},
		{
			name: "neither", body: `{}`, code: http.StatusBadRequest,
			want: `{"message":"Please provide either 'id' or 'name' to search for products"}`,
		},
		{
			name: "malformed", body: `{"id":`, code: http.StatusBadRequest,
			want: `{"message":"invalid body"}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/products", tc.body)
			require.Equal(t, tc.code, rec.Code)
			assert.JSONEq(t, tc.want, rec.Body.String())
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	env := newTestEnv(t)
	ck := env.login(t, "alice")
	id := env.addProduct(t, ck, `{"name":"A","price":10.0,"description":"d"}`)
	env.addProduct(t, ck, `{"name":"B","price":1}`)
	path := fmt.Sprintf("/api/products/update/%d", id)

	rec := env.do(t, http.MethodPut, path, `{"price":10.0}`, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"No changes detected"}`, rec.Body.String())

	rec = env.do(t, http.MethodPut, path, `{"price":12.0}`, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeObject(t, rec)
	assert.Equal(t, "Product updated successfully", body["message"])
	prod := body["product"].(map[string]any)
	assert.Equal(t, 12.0, prod["price"])
	assert.Equal(t, "d", prod["description"])
	assert.NotNil(t, prod["updated"])

	rec = env.do(t, http.MethodPut, path, `{"description":null}`, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	prod = decodeObject(t, rec)["product"].(map[string]any)
	assert.Nil(t, prod["description"])

	rec = env.do(t, http.MethodPut, path, `{"name":"B"}`, ck)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{
		"message": "For existing products, be sure to enter a new name.",
		"error": "Product with name 'B' already exists"
	}`, rec.Body.String())

	rec = env.do(t, http.MethodPut, "/api/products/update/999", `{"price":1}`, ck)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"No products found","error":"No products found with ID 999"}`, rec.Body.String())

	rec = env.do(t, http.MethodPut, "/api/products/update/abc", `{"price":1}`, ck)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProduct_AnyUser(t *testing.T) {
	env := newTestEnv(t)
	id := env.addProduct(t, env.login(t, "alice"), `{"name":"A","price":10.0}`)

	rec := env.do(t, http.MethodPut, fmt.Sprintf("/api/products/update/%d", id), `{"name":"A2"}`, env.login(t, "bob"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	ck := env.login(t, "alice")
	id := env.addProduct(t, ck, `{"name":"A","price":10.0}`)
	path := fmt.Sprintf("/api/products/delete/%d", id)

	// any logged-in user may delete
	rec := env.do(t, http.MethodDelete, path, "", env.login(t, "bob"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{
		"message": "Product deleted successfully",
		"product": {"id":%d,"name":"A","price":10,"description":""}
	}`, id), rec.Body.String())

	rec = env.do(t, http.MethodDelete, path, "", ck)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Product not found"}`, rec.Body.String())
}

func TestSearchProducts(t *testing.T) {
	env := newTestEnv(t)
	ck := env.login(t, "alice")
	env.addProduct(t, ck, `{"name":"Red Mug","price":3,"description":"ceramic"}`)
	env.addProduct(t, ck, `{"name":"Blue Plate","price":4}`)

	rec := env.do(t, http.MethodGet, "/api/products/search?q=mug", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeArray(t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "Red Mug", items[0]["name"])

	rec = env.do(t, http.MethodGet, "/api/products/search?q=", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddProduct_NullDescription(t *testing.T) {
	env := newTestEnv(t)
	ck := env.login(t, "alice")

	rec := env.do(t, http.MethodPost, "/api/products/add", `{"name":"A","price":1,"description":null}`, ck)
	require.Equal(t, http.StatusCreated, rec.Code)
	prod := decodeObject(t, rec)["product"].(map[string]any)
	assert.Contains(t, prod, "description")
	assert.Nil(t, prod["description"])
}

func TestProduct_NameTooLong(t *testing.T) {
	env := newTestEnv(t)
	ck := env.login(t, "alice")
	id := env.addProduct(t, ck, `{"name":"A","price":1}`)
	long := strings.Repeat("n", 81)

	rec := env.do(t, http.MethodPost, "/api/products/add", `{"name":"`+long+`","price":1}`, ck)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid product data","invalid_fields":["name"]}`, rec.Body.String())

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/products/update/%d", id), `{"name":"`+long+`"}`, ck)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid product data","invalid_fields":["name"]}`, rec.Body.String())
}
