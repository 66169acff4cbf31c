package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"virtual-pet/internal/router"
)

type petBody struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Happiness int    `json:"happiness"`
	Hunger    int    `json:"hunger"`
}

type interactBody struct {
	Pet         petBody `json:"pet"`
	Interaction struct {
		ID        string `json:"id"`
		Kind      string `json:"kind"`
		Magnitude int    `json:"magnitude"`
	} `json:"interaction"`
	Replayed bool `json:"replayed"`
}

type logEntry struct {
	ID      string `json:"id"`
	PetID   string `json:"pet_id"`
	Kind    string `json:"kind"`
	PetName string `json:"pet_name"`
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	// Reloj que avanza 1s por llamada para que el orden del log sea determinista.
	var mu sync.Mutex
	clock := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier: nil,
		Now: func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			clock = clock.Add(time.Second)
			return clock
		},
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_InteractionsFlow(t *testing.T) {
	ts := newServer(t)
	ownerID := "owner-1"

	// 1) Crear mascota con hambre inicial
	petID := createPet(t, ts.URL, ownerID, map[string]any{
		"name":    "Milo",
		"species": "cat",
		"hunger":  50,
	})

	// 2) Jugar 60 => happiness satura en 100
	{
		res := interact(t, ts.URL, ownerID, petID, "/interactions", map[string]any{"kind": "play", "magnitude": 60}, "")
		if res.Pet.Happiness != 100 || res.Interaction.Kind != "play" {
			t.Fatalf("unexpected play result: %+v", res)
		}
	}

	// 3) Alimentar 70 por el atajo => hunger satura en 0
	{
		res := interact(t, ts.URL, ownerID, petID, "/feed", map[string]any{"amount": 70}, "")
		if res.Pet.Hunger != 0 || res.Interaction.Magnitude != 70 {
			t.Fatalf("unexpected feed result: %+v", res)
		}
	}

	// 4) Atajo sin body usa la magnitud por defecto
	{
		res := interact(t, ts.URL, ownerID, petID, "/sleep", nil, "")
		if res.Interaction.Magnitude != 8 {
			t.Fatalf("expected default sleep magnitude 8, got %d", res.Interaction.Magnitude)
		}
	}

	// 5) Log: más nuevas primero, limit respetado
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID+"/interactions?limit=2", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list interactions, got %d body=%s", st, string(body))
		}
		var items []logEntry
		_ = json.Unmarshal(body, &items)
		if len(items) != 2 || items[0].Kind != "sleep" || items[1].Kind != "feed" {
			t.Fatalf("unexpected log order: %s", string(body))
		}
	}

	// 6) La mascota refleja el estado final
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID, ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get pet, got %d body=%s", st, string(body))
		}
		var p petBody
		_ = json.Unmarshal(body, &p)
		if p.Happiness != 100 || p.Hunger != 0 {
			t.Fatalf("unexpected pet state: %s", string(body))
		}
	}
}

func TestHTTP_IdempotencyKeyReplays(t *testing.T) {
	ts := newServer(t)
	ownerID := "owner-1"
	petID := createPet(t, ts.URL, ownerID, map[string]any{"name": "Milo", "species": "cat", "hunger": 50})

	first := interact(t, ts.URL, ownerID, petID, "/interactions", map[string]any{"kind": "feed", "magnitude": 10}, "k-1")
	if first.Replayed || first.Pet.Hunger != 40 {
		t.Fatalf("unexpected first result: %+v", first)
	}

	st, body := doReqWithKey(t, ts.URL, "POST", "/pets/"+petID+"/interactions", ownerID, "k-1", map[string]any{"kind": "feed", "magnitude": 10})
	if st != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d body=%s", st, string(body))
	}
	var replay interactBody
	_ = json.Unmarshal(body, &replay)
	if !replay.Replayed || replay.Interaction.ID != first.Interaction.ID || replay.Pet.Hunger != 40 {
		t.Fatalf("unexpected replay: %s", string(body))
	}

	// Solo un registro en el log
	st, body = doReq(t, ts.URL, "GET", "/pets/"+petID+"/interactions", ownerID, nil)
	var items []logEntry
	_ = json.Unmarshal(body, &items)
	if st != http.StatusOK || len(items) != 1 {
		t.Fatalf("expected single log entry, got %d body=%s", st, string(body))
	}
}

func TestHTTP_InteractionErrors(t *testing.T) {
	ts := newServer(t)
	ownerID := "owner-1"
	petID := createPet(t, ts.URL, ownerID, map[string]any{"name": "Milo", "species": "cat"})

	cases := []struct {
		name   string
		method string
		path   string
		user   string
		body   any
		want   int
	}{
		{"sin principal", "POST", "/pets/" + petID + "/interactions", "", map[string]any{"kind": "play"}, http.StatusUnauthorized},
		{"otro usuario", "POST", "/pets/" + petID + "/interactions", "intruder", map[string]any{"kind": "play"}, http.StatusForbidden},
		{"otro usuario lista", "GET", "/pets/" + petID + "/interactions", "intruder", nil, http.StatusForbidden},
		{"kind desconocido", "POST", "/pets/" + petID + "/interactions", ownerID, map[string]any{"kind": "dance"}, http.StatusBadRequest},
		{"mascota inexistente", "POST", "/pets/ghost/play", ownerID, nil, http.StatusNotFound},
		{"limit inválido", "GET", "/pets/" + petID + "/interactions?limit=abc", ownerID, nil, http.StatusBadRequest},
		{"json inválido", "POST", "/pets/" + petID + "/interactions", ownerID, "not-an-object", http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, body := doReq(t, ts.URL, tc.method, tc.path, tc.user, tc.body)
			if st != tc.want {
				t.Fatalf("expected %d, got %d body=%s", tc.want, st, string(body))
			}
		})
	}
}

func TestHTTP_MyInteractionsAcrossPets(t *testing.T) {
	ts := newServer(t)
	ownerID := "owner-1"

	milo := createPet(t, ts.URL, ownerID, map[string]any{"name": "Milo", "species": "cat"})
	rex := createPet(t, ts.URL, ownerID, map[string]any{"name": "Rex", "species": "dog"})
	other := createPet(t, ts.URL, "owner-2", map[string]any{"name": "Nope", "species": "fish"})

	interact(t, ts.URL, ownerID, milo, "/play", nil, "")
	interact(t, ts.URL, ownerID, rex, "/clean", nil, "")
	interact(t, ts.URL, "owner-2", other, "/play", nil, "")

	st, body := doReq(t, ts.URL, "GET", "/me/interactions", ownerID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 my interactions, got %d body=%s", st, string(body))
	}
	var items []logEntry
	_ = json.Unmarshal(body, &items)
	if len(items) != 2 || items[0].PetName != "Rex" || items[1].PetName != "Milo" {
		t.Fatalf("unexpected my interactions: %s", string(body))
	}

	// Borrar la mascota no borra el log, pero sale de la vista por owner
	if st, body := doReq(t, ts.URL, "DELETE", "/pets/"+rex, ownerID, nil); st != http.StatusNoContent {
		t.Fatalf("expected 204 delete pet, got %d body=%s", st, string(body))
	}
	_, body = doReq(t, ts.URL, "GET", "/me/interactions", ownerID, nil)
	items = nil
	_ = json.Unmarshal(body, &items)
	if len(items) != 1 || items[0].PetID != milo {
		t.Fatalf("unexpected my interactions after delete: %s", string(body))
	}
}

func TestHTTP_PetProfileAndAge(t *testing.T) {
	ts := newServer(t)
	ownerID := "owner-1"
	petID := createPet(t, ts.URL, ownerID, map[string]any{"name": "Milo", "species": "cat"})

	{
		st, body := doReq(t, ts.URL, "PATCH", "/pets/"+petID, ownerID, map[string]any{"name": "Luna"})
		var p petBody
		_ = json.Unmarshal(body, &p)
		if st != http.StatusOK || p.Name != "Luna" {
			t.Fatalf("expected 200 patch pet, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/pets/"+petID+"/age", ownerID, nil)
		var p petBody
		_ = json.Unmarshal(body, &p)
		if st != http.StatusOK || p.Age != 1 {
			t.Fatalf("expected age 1, got %d body=%s", st, string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "POST", "/pets/"+petID+"/age", ownerID, map[string]any{"years": 0})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for years=0, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "POST", "/pets/"+petID+"/age", ownerID, map[string]any{"years": int64(math.MaxInt64)})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for overflowing years, got %d", st)
		}
		_, body := doReq(t, ts.URL, "GET", "/pets/"+petID, ownerID, nil)
		var p petBody
		_ = json.Unmarshal(body, &p)
		if p.Age != 1 {
			t.Fatalf("age changed after rejected advance: %s", string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "POST", "/pets", ownerID, map[string]any{"name": "Bad", "species": "cat", "happiness": 101})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for happiness out of range, got %d", st)
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/pets", ownerID, nil)
		var items []petBody
		_ = json.Unmarshal(body, &items)
		if st != http.StatusOK || len(items) != 1 {
			t.Fatalf("expected 1 pet, got %d body=%s", st, string(body))
		}
	}
}

func TestHTTP_Health(t *testing.T) {
	ts := newServer(t)
	st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected health: %d %s", st, string(body))
	}
}

func createPet(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create pet: missing id body=%s", string(body))
	}
	return resp.ID
}

func interact(t *testing.T, baseURL, userID, petID, suffix string, payload any, key string) interactBody {
	t.Helper()

	st, body := doReqWithKey(t, baseURL, "POST", "/pets/"+petID+suffix, userID, key, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 interaction, got %d body=%s", st, string(body))
	}

	var resp interactBody
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("interaction: bad body %s", string(body))
	}
	return resp
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()
	return doReqWithKey(t, baseURL, method, path, debugUserID, "", body)
}

func doReqWithKey(t *testing.T, baseURL, method, path, debugUserID, idempotencyKey string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
