// releasectl publishes a release record: it checksums a local installer
// and creates the version through the admin API.
//
//	releasectl -file SimpleBIM-2.1.msi -version 2.1.0.0 \
//	    -url https://downloads.example.com/SimpleBIM-2.1.msi \
//	    -server http://localhost:8080 -email admin@example.com
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"updateserver/internal/utils"
)

func main() {
	var (
		file        = flag.String("file", "", "path to the installer file (required)")
		ver         = flag.String("version", "", "version to publish (required)")
		downloadURL = flag.String("url", "", "public download URL (required)")
		notes       = flag.String("notes", "", "release notes")
		updateType  = flag.String("type", "optional", "update type: optional or mandatory")
		minRequired = flag.String("min-required", "", "minimum required version")
		force       = flag.Bool("force", false, "set the force-update flag")
		server      = flag.String("server", "http://localhost:8080", "update server base URL")
		email       = flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin email")
		password    = flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	)
	flag.Parse()

	if *file == "" || *ver == "" || *downloadURL == "" {
		flag.Usage()
		os.Exit(2)
	}

	sum, size, err := utils.FileSHA256(*file)
	if err != nil {
		log.Fatalf("checksum: %v", err)
	}
	log.Printf("%s: sha256=%s size=%d", *file, sum, size)

	client := &http.Client{Timeout: 30 * time.Second}

	token, err := login(client, *server, *email, *password)
	if err != nil {
		log.Fatalf("login: %v", err)
	}

	payload := map[string]interface{}{
		"version":         *ver,
		"release_notes":   *notes,
		"download_url":    *downloadURL,
		"file_size":       size,
		"checksum_sha256": sum,
		"update_type":     *updateType,
		"force_update":    *force,
	}
	if *minRequired != "" {
		payload["min_required_version"] = *minRequired
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequest(http.MethodPost, *server+"/updates/versions", bytes.NewReader(body))
	if err != nil {
		log.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("publish: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var msg bytes.Buffer
		_, _ = msg.ReadFrom(resp.Body)
		log.Fatalf("publish failed: %s: %s", resp.Status, msg.String())
	}
	var created struct {
		ID      uint   `json:"id"`
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		log.Fatalf("decode response: %v", err)
	}
	fmt.Printf("published version %s (id %d)\n", created.Version, created.ID)
}

func login(client *http.Client, server, email, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := client.Post(server+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Token, nil
}
