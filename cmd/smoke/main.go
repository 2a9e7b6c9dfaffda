package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"atelierhq.io/internal/auth"
)

// End-to-end check against a running API: a staff token provisions a tenant,
// a director token works inside it, a foreign director is denied, and the
// denial shows up in the audit query.
func main() {
	base := os.Getenv("ATELIER_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}

	staff := mintToken("smoke-staff", "PlatformStaff", "")

	org := struct {
		ID string `json:"id"`
	}{}
	status, body := do(http.MethodPost, base+"/v1/organizations", staff,
		fmt.Sprintf(`{"name":"smoke-%d"}`, time.Now().UnixNano()))
	if status != http.StatusCreated {
		log.Fatalf("create organization: status %d, body %s", status, body)
	}
	if err := json.Unmarshal([]byte(body), &org); err != nil || org.ID == "" {
		log.Fatalf("decode organization: %v (%s)", err, body)
	}

	director := mintToken("smoke-director", "Director", org.ID)
	status, body = do(http.MethodPost, base+"/v1/organizations/"+org.ID+"/orders", director,
		`{"reference":"SMOKE-1","costume":"Smoke-test doublet"}`)
	if status != http.StatusCreated {
		log.Fatalf("create order: status %d, body %s", status, body)
	}

	outsider := mintToken("smoke-outsider", "Director", "some-other-org")
	status, body = do(http.MethodGet, base+"/v1/organizations/"+org.ID+"/orders", outsider, "")
	if status != http.StatusForbidden {
		log.Fatalf("cross-tenant read: expected 403, got %d (%s)", status, body)
	}
	if bytes.Contains([]byte(body), []byte("ORG_MISMATCH")) {
		log.Fatalf("reason code leaked into deny body: %s", body)
	}

	status, body = do(http.MethodGet, base+"/v1/audit?user_id=smoke-outsider&granted=false", staff, "")
	if status != http.StatusOK {
		log.Fatalf("audit query: status %d, body %s", status, body)
	}
	var payload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		log.Fatalf("decode audit payload: %v", err)
	}
	if payload.Count == 0 {
		log.Fatal("expected the cross-tenant denial in the audit trail")
	}

	fmt.Printf("smoke test passed: org=%s denied-records=%d\n", org.ID, payload.Count)
}

func mintToken(userID, role, orgID string) string {
	token, err := auth.GenerateToken(auth.TokenSpec{
		UserID:         userID,
		Role:           role,
		OrganizationID: orgID,
		SessionID:      fmt.Sprintf("smoke-%d", time.Now().Unix()),
		TTL:            5 * time.Minute,
	})
	if err != nil {
		log.Fatalf("mint token for %s: %v", userID, err)
	}
	return token
}

func do(method, url, token, body string) (int, string) {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		log.Fatalf("build request %s %s: %v", method, url, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("read response: %v", err)
	}
	return resp.StatusCode, string(data)
}
