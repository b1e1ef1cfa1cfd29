package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func registerUser(t *testing.T, ts *httptest.Server, email, password string) string {
	t.Helper()

	body, _ := json.Marshal(RegisterRequest{Email: email, Password: password, Name: "Test"})
	resp, err := ts.Client().Post(ts.URL+"/api/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register returned status %d", resp.StatusCode)
	}

	var auth AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return auth.Token
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, payload any) *http.Response {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

func TestCreateRoomRequiresAuth(t *testing.T) {
	ts, _, _ := startTestServer(t, "")

	resp := doJSON(t, ts, http.MethodPost, "/api/rooms", "", CreateRoomRequest{Name: "pairing"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateAndGetRoom(t *testing.T) {
	ts, _, _ := startTestServer(t, "")
	token := registerUser(t, ts, "alice@x.com", "secret1")

	resp := doJSON(t, ts, http.MethodPost, "/api/rooms", token, CreateRoomRequest{ID: "interview-42", Name: "interview"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create returned status %d", resp.StatusCode)
	}
	var created RoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	resp.Body.Close()

	if created.ID != "interview-42" || created.CreatorEmail != "alice@x.com" {
		t.Fatalf("unexpected room: %+v", created)
	}

	// Fetching a room needs no token.
	resp = doJSON(t, ts, http.MethodGet, "/api/rooms/interview-42", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get returned status %d", resp.StatusCode)
	}
	var fetched RoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if fetched.Name != "interview" {
		t.Fatalf("unexpected fetched room: %+v", fetched)
	}
}

func TestCreateRoomGeneratesID(t *testing.T) {
	ts, _, _ := startTestServer(t, "")
	token := registerUser(t, ts, "alice@x.com", "secret1")

	resp := doJSON(t, ts, http.MethodPost, "/api/rooms", token, CreateRoomRequest{Name: "adhoc"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create returned status %d", resp.StatusCode)
	}
	var created RoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a generated room id")
	}
}

func TestCreateRoomDuplicateID(t *testing.T) {
	ts, _, _ := startTestServer(t, "")
	token := registerUser(t, ts, "alice@x.com", "secret1")

	resp := doJSON(t, ts, http.MethodPost, "/api/rooms", token, CreateRoomRequest{ID: "r1", Name: "one"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first create returned status %d", resp.StatusCode)
	}

	resp = doJSON(t, ts, http.MethodPost, "/api/rooms", token, CreateRoomRequest{ID: "r1", Name: "two"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate id, got %d", resp.StatusCode)
	}
}

func TestDeleteRoomCreatorOnly(t *testing.T) {
	ts, _, _ := startTestServer(t, "")
	aliceToken := registerUser(t, ts, "alice@x.com", "secret1")
	bobToken := registerUser(t, ts, "bob@x.com", "secret2")

	resp := doJSON(t, ts, http.MethodPost, "/api/rooms", aliceToken, CreateRoomRequest{ID: "r1", Name: "one"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create returned status %d", resp.StatusCode)
	}

	resp = doJSON(t, ts, http.MethodDelete, "/api/rooms/r1", bobToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-creator, got %d", resp.StatusCode)
	}

	resp = doJSON(t, ts, http.MethodDelete, "/api/rooms/r1", aliceToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 for creator delete, got %d", resp.StatusCode)
	}

	resp = doJSON(t, ts, http.MethodGet, "/api/rooms/r1", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestLoginAfterRegister(t *testing.T) {
	ts, _, _ := startTestServer(t, "")
	registerUser(t, ts, "alice@x.com", "secret1")

	resp := doJSON(t, ts, http.MethodPost, "/api/login", "", LoginRequest{Email: "alice@x.com", Password: "secret1"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned status %d", resp.StatusCode)
	}

	resp2 := doJSON(t, ts, http.MethodPost, "/api/login", "", LoginRequest{Email: "alice@x.com", Password: "wrong!"})
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", resp2.StatusCode)
	}
}
