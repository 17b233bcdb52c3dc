package http_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/elemahana/farm-api/internal/domain"
)

const cropInputBody = `{
	"date": "2024-03-01",
	"type": "Planting",
	"field": "North A",
	"cropType": "Paddy",
	"variety": "BG 352",
	"quantity": 40,
	"unitCost": 120,
	"remarks": "first sowing"
}`

func createCropInput(t *testing.T, env *testEnv, token string) string {
	t.Helper()
	w := env.unsafe("POST", "/cropinput", cropInputBody, bearer(token))
	if w.Code != http.StatusCreated {
		t.Fatalf("create crop input: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Data.ID == "" {
		t.Fatalf("create resp: %v %s", err, w.Body.String())
	}
	return resp.Data.ID
}

func Test_CropInput_OwnershipGate(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	owner := env.register("owner@example.com", "StrongP@ss1")
	other := env.register("other@example.com", "StrongP@ss1")
	_, managerTok := env.createUser("manager@example.com", domain.RoleUser, domain.RoleManager)
	_, adminTok := env.createUser("admin@example.com", domain.RoleUser, domain.RoleAdmin)

	id := createCropInput(t, env, owner.Token)

	// owner reads own record
	w := env.do("GET", "/cropinput/"+id, "", bearer(owner.Token))
	if w.Code != http.StatusOK {
		t.Fatalf("owner get: %d %s", w.Code, w.Body.String())
	}

	// non-owner is rejected
	w = env.do("GET", "/cropinput/"+id, "", bearer(other.Token))
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner get: %d %s", w.Code, w.Body.String())
	}

	// manager too: crop inputs do not allow managers
	w = env.do("GET", "/cropinput/"+id, "", bearer(managerTok))
	if w.Code != http.StatusForbidden {
		t.Fatalf("manager get: %d %s", w.Code, w.Body.String())
	}

	// admin bypasses ownership entirely
	w = env.do("GET", "/cropinput/"+id, "", bearer(adminTok))
	if w.Code != http.StatusOK {
		t.Fatalf("admin get: %d %s", w.Code, w.Body.String())
	}

	// writes are gated the same way
	w = env.unsafe("DELETE", "/cropinput/"+id, "", bearer(other.Token))
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete: %d %s", w.Code, w.Body.String())
	}

	// absent resources are a plain 404
	w = env.do("GET", "/cropinput/ffffffffffffffffffffffff", "", bearer(owner.Token))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing resource: %d %s", w.Code, w.Body.String())
	}

	// malformed ids never reach the store
	w = env.do("GET", "/cropinput/not-an-id", "", bearer(owner.Token))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: %d %s", w.Code, w.Body.String())
	}

	// and the whole group requires authentication
	w = env.do("GET", "/cropinput/"+id, "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous get: %d %s", w.Code, w.Body.String())
	}
}

func Test_CropInput_ListFiltering(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	a := env.register("lista@example.com", "StrongP@ss1")
	b := env.register("listb@example.com", "StrongP@ss1")
	_, adminTok := env.createUser("listadmin@example.com", domain.RoleUser, domain.RoleAdmin)

	createCropInput(t, env, a.Token)
	createCropInput(t, env, b.Token)
	createCropInput(t, env, b.Token)

	type listResp struct {
		Data struct {
			Count int `json:"count"`
			Data  []struct {
				UserID string `json:"userId"`
			} `json:"data"`
		} `json:"data"`
	}
	list := func(token string) listResp {
		w := env.do("GET", "/cropinput", "", bearer(token))
		if w.Code != http.StatusOK {
			t.Fatalf("list: %d %s", w.Code, w.Body.String())
		}
		var lr listResp
		if err := json.Unmarshal(w.Body.Bytes(), &lr); err != nil {
			t.Fatalf("list resp: %v %s", err, w.Body.String())
		}
		return lr
	}

	la := list(a.Token)
	if la.Data.Count != 1 {
		t.Fatalf("a must see only own records, got %d", la.Data.Count)
	}
	for _, rec := range la.Data.Data {
		if rec.UserID != a.User.ID {
			t.Fatalf("foreign record leaked into a's list: %+v", rec)
		}
	}

	lb := list(b.Token)
	if lb.Data.Count != 2 {
		t.Fatalf("b must see 2 records, got %d", lb.Data.Count)
	}

	if ladmin := list(adminTok); ladmin.Data.Count != 3 {
		t.Fatalf("admin must see all records, got %d", ladmin.Data.Count)
	}
}

func Test_Feedback_EmailOwnership(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	a := env.register("guest@example.com", "StrongP@ss1")
	b := env.register("someone@example.com", "StrongP@ss1")
	_, managerTok := env.createUser("fbmanager@example.com", domain.RoleUser, domain.RoleManager)

	// feedback is submitted anonymously, correlated by email
	w := env.unsafe("POST", "/feedback",
		`{"name":"Guest","email":"guest@example.com","feedback":"great tour","rating":5}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create feedback: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Data.ID == "" {
		t.Fatalf("create resp: %v %s", err, w.Body.String())
	}
	id := resp.Data.ID

	// the matching account owns it
	w = env.do("GET", "/feedback/"+id, "", bearer(a.Token))
	if w.Code != http.StatusOK {
		t.Fatalf("email owner get: %d %s", w.Code, w.Body.String())
	}

	// an unrelated account does not
	w = env.do("GET", "/feedback/"+id, "", bearer(b.Token))
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner get: %d %s", w.Code, w.Body.String())
	}

	// feedback allows managers
	w = env.do("GET", "/feedback/"+id, "", bearer(managerTok))
	if w.Code != http.StatusOK {
		t.Fatalf("manager get: %d %s", w.Code, w.Body.String())
	}

	// the email owner may revise a submission; others may not
	revision := `{"name":"Guest","email":"guest@example.com","feedback":"even better","rating":4}`
	w = env.unsafe("PUT", "/feedback/"+id, revision, bearer(a.Token))
	if w.Code != http.StatusOK {
		t.Fatalf("owner update: %d %s", w.Code, w.Body.String())
	}
	w = env.unsafe("PUT", "/feedback/"+id, revision, bearer(b.Token))
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner update: %d %s", w.Code, w.Body.String())
	}

	// lists are scoped by email for regular accounts
	w = env.do("GET", "/feedback", "", bearer(b.Token))
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}
	var lr struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &lr); err != nil {
		t.Fatalf("list resp: %v", err)
	}
	if lr.Data.Count != 0 {
		t.Fatalf("b must not see foreign feedback, got %d", lr.Data.Count)
	}
}
