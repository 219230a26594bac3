package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agregados/pkg/rowstore"
)

func seededStore() *rowstore.Memory {
	return rowstore.NewMemory([][]string{
		{"id_pedido", "cliente", "custo do material", "custo do frete", "preço de venda", "entregue", "pagamento material", "pagamento frete", "cliente pagou"},
		{"a1", "João", "100", "50", "300", "não", "não", "não", "não"},
	})
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	decoded := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), "body: %s", rec.Body.String())
	}
	return rec, decoded
}

func TestListOrders(t *testing.T) {
	router := GetRouter(seededStore())
	rec, body := doRequest(t, router, http.MethodGet, "/api/orders", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resumo, ok := body["resumo"].(map[string]interface{})
	require.True(t, ok, "response carries a summary")
	assert.EqualValues(t, 1, resumo["total_entregas"])
	assert.EqualValues(t, 0, resumo["entregues"])
	assert.Equal(t, "150", resumo["lucro"])

	pedidos, ok := body["pedidos"].([]interface{})
	require.True(t, ok)
	require.Len(t, pedidos, 1)
}

func TestCreateOrder(t *testing.T) {
	store := seededStore()
	router := GetRouter(store)

	rec, body := doRequest(t, router, http.MethodPost, "/api/orders", map[string]string{
		"cliente":           "Maria",
		"tipo_de_material":  "areia",
		"custo_do_material": "80",
		"custo_do_frete":    "20",
		"preco_de_venda":    "200",
	}, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	id, _ := body["id_pedido"].(string)
	require.NotEmpty(t, id)

	rec, list := doRequest(t, router, http.MethodGet, "/api/orders", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resumo := list["resumo"].(map[string]interface{})
	assert.EqualValues(t, 2, resumo["total_entregas"])
}

func TestCreateOrderBadBody(t *testing.T) {
	router := GetRouter(seededStore())
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetFlag(t *testing.T) {
	router := GetRouter(seededStore())

	rec, _ := doRequest(t, router, http.MethodPost, "/api/orders/a1/flags/entregue",
		map[string]string{"value": "sim"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doRequest(t, router, http.MethodGet, "/api/orders", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resumo := body["resumo"].(map[string]interface{})
	assert.EqualValues(t, 1, resumo["entregues"])
}

func TestSetFlagDashedName(t *testing.T) {
	router := GetRouter(seededStore())
	rec, _ := doRequest(t, router, http.MethodPost, "/api/orders/a1/flags/pagamento-material",
		map[string]string{"value": "sim"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetFlagErrors(t *testing.T) {
	router := GetRouter(seededStore())

	rec, _ := doRequest(t, router, http.MethodPost, "/api/orders/a1/flags/cliente",
		map[string]string{"value": "sim"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "non-flag column")

	rec, _ = doRequest(t, router, http.MethodPost, "/api/orders/a1/flags/entregue",
		map[string]string{"value": "yes"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "value outside sim/não")

	rec, _ = doRequest(t, router, http.MethodPost, "/api/orders/gone/flags/entregue",
		map[string]string{"value": "sim"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "missing id")
}

func TestTransportFailureMapsToBadGateway(t *testing.T) {
	store := seededStore()
	store.FailOps = map[string]error{"update cell": assert.AnError}
	router := GetRouter(store)

	rec, _ := doRequest(t, router, http.MethodPost, "/api/orders/a1/flags/entregue",
		map[string]string{"value": "sim"}, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	store := seededStore()
	router := GetRouter(store)

	rec, _ := doRequest(t, router, http.MethodDelete, "/api/orders/a1", nil, nil)
	require.Equal(t, http.StatusAccepted, rec.Code, "first call only arms")

	rec, body := doRequest(t, router, http.MethodGet, "/api/orders", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resumo := body["resumo"].(map[string]interface{})
	assert.EqualValues(t, 1, resumo["total_entregas"], "arming must not delete anything")

	rec, _ = doRequest(t, router, http.MethodDelete, "/api/orders/a1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, "second call deletes")

	rec, body = doRequest(t, router, http.MethodGet, "/api/orders", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resumo = body["resumo"].(map[string]interface{})
	assert.EqualValues(t, 0, resumo["total_entregas"])

	rec, _ = doRequest(t, router, http.MethodDelete, "/api/orders/a1", nil, nil)
	assert.Equal(t, http.StatusAccepted, rec.Code, "a deleted id re-arms and then 404s on confirm")
	rec, _ = doRequest(t, router, http.MethodDelete, "/api/orders/a1", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestArmingAnotherOrderDisarmsPrevious(t *testing.T) {
	store := rowstore.NewMemory([][]string{
		{"id_pedido", "cliente"},
		{"a1", "João"},
		{"a2", "Maria"},
	})
	router := GetRouter(store)

	rec, _ := doRequest(t, router, http.MethodDelete, "/api/orders/a1", nil, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	rec, _ = doRequest(t, router, http.MethodDelete, "/api/orders/a2", nil, nil)
	require.Equal(t, http.StatusAccepted, rec.Code, "arming a2 replaces the pending a1")

	rec, _ = doRequest(t, router, http.MethodDelete, "/api/orders/a1", nil, nil)
	assert.Equal(t, http.StatusAccepted, rec.Code, "a1 is no longer armed, so this re-arms")

	rec, _ = doRequest(t, router, http.MethodDelete, "/api/orders/a1", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnrelatedMutationDisarmsPendingDelete(t *testing.T) {
	router := GetRouter(seededStore())

	rec, _ := doRequest(t, router, http.MethodDelete, "/api/orders/a1", nil, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec, _ = doRequest(t, router, http.MethodPost, "/api/orders/a1/flags/entregue",
		map[string]string{"value": "sim"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doRequest(t, router, http.MethodDelete, "/api/orders/a1", nil, nil)
	assert.Equal(t, http.StatusAccepted, rec.Code, "the flag flip disarmed the pending delete")
}

func TestCancelDelete(t *testing.T) {
	router := GetRouter(seededStore())

	rec, _ := doRequest(t, router, http.MethodDelete, "/api/orders/a1", nil, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec, _ = doRequest(t, router, http.MethodPost, "/api/orders/a1/delete/cancel", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doRequest(t, router, http.MethodDelete, "/api/orders/a1", nil, nil)
	assert.Equal(t, http.StatusAccepted, rec.Code, "cancelled, so this arms again instead of deleting")
}

func TestResetAll(t *testing.T) {
	store := seededStore()
	router := GetRouter(store)

	rec, _ := doRequest(t, router, http.MethodPost, "/api/reset", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "reset without the confirm header is refused")

	rec, _ = doRequest(t, router, http.MethodPost, "/api/reset", nil, map[string]string{"X-Confirm-Reset": "sim"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doRequest(t, router, http.MethodGet, "/api/orders", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resumo := body["resumo"].(map[string]interface{})
	assert.EqualValues(t, 0, resumo["total_entregas"])
}

func TestReports(t *testing.T) {
	store := rowstore.NewMemory([][]string{
		{"id_pedido", "cliente", "tipo de material", "caçambeiro", "custo do material", "custo do frete", "preço de venda", "pagamento material", "pagamento frete", "cliente pagou"},
		{"a1", "João", "areia", "Zé", "100", "50", "300", "sim", "sim", "não"},
	})
	router := GetRouter(store)

	rec, body := doRequest(t, router, http.MethodGet, "/api/reports", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	materials, ok := body["volume_por_material"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 1, materials["areia"])

	unpaid, ok := body["clientes_em_aberto"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"João"}, unpaid)
}

func TestHealthz(t *testing.T) {
	rec, body := doRequest(t, GetRouter(seededStore()), http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}
