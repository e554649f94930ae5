package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// User represents the structure of a user record to insert
type User struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Email string `json:"email"`
}

// generateRandomName generates a random 6-letter name
func generateRandomName() string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	name := make([]byte, 6)
	for i := range name {
		name[i] = letters[rand.Intn(len(letters))]
	}
	// Capitalize first letter
	name[0] = name[0] - 32
	return string(name)
}

// generateRandomAge generates a random age between 18 and 99
func generateRandomAge() int {
	return rand.Intn(82) + 18
}

func post(url string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Usage: go run test_scripts/insert_docs_load.go <number_of_users> [server_url]
//
// Declares an (age desc, name) index, inserts random users and times a range
// query over the ages 30 to 40.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run test_scripts/insert_docs_load.go <number_of_users> [server_url]")
		fmt.Println("Example: go run test_scripts/insert_docs_load.go 1000 http://localhost:8080")
		os.Exit(1)
	}

	numUsers, err := strconv.Atoi(os.Args[1])
	if err != nil || numUsers <= 0 {
		fmt.Printf("Error: invalid number of users '%s'\n", os.Args[1])
		os.Exit(1)
	}

	serverURL := "http://localhost:8080"
	if len(os.Args) >= 3 {
		serverURL = os.Args[2]
	}

	fields := []string{"age desc", "name"}
	if err := post(serverURL+"/indexes", map[string]interface{}{"fields": fields}, nil); err != nil {
		fmt.Printf("Error declaring index: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting load test: inserting %d users to %s\n", numUsers, serverURL)

	startTime := time.Now()
	successCount := 0
	errorCount := 0
	reportInterval := max(1, numUsers/10)

	for i := 0; i < numUsers; i++ {
		name := generateRandomName()
		user := User{
			Name:  name,
			Age:   generateRandomAge(),
			Email: fmt.Sprintf("%s@example.com", strings.ToLower(name)),
		}

		if err := post(serverURL+"/records", user, nil); err != nil {
			errorCount++
			fmt.Printf("Error inserting user %d (%s): %v\n", i+1, user.Name, err)
		} else {
			successCount++
		}

		if (i+1)%reportInterval == 0 || i == numUsers-1 {
			elapsed := time.Since(startTime)
			rate := float64(i+1) / elapsed.Seconds()
			fmt.Printf("Progress: %d/%d users (%.1f%%) - Rate: %.1f users/sec - Success: %d, Errors: %d\n",
				i+1, numUsers, float64(i+1)/float64(numUsers)*100, rate, successCount, errorCount)
		}
	}
	insertTime := time.Since(startTime)

	// Descending age: the scan starts at the older bound
	queryStart := time.Now()
	var keys []string
	err = post(serverURL+"/query", map[string]interface{}{
		"fields": fields,
		"start":  []interface{}{40, nil},
		"end":    []interface{}{30, nil},
		"keys":   true,
	}, &keys)
	queryTime := time.Since(queryStart)
	if err != nil {
		fmt.Printf("Error running range query: %v\n", err)
		errorCount++
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("LOAD TEST COMPLETE")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total users attempted: %d\n", numUsers)
	fmt.Printf("Successful inserts:    %d\n", successCount)
	fmt.Printf("Failed requests:       %d\n", errorCount)
	fmt.Printf("Insert time:           %v (%.2f users/sec)\n", insertTime, float64(numUsers)/insertTime.Seconds())
	fmt.Printf("Range query (30-40):   %d users in %v\n", len(keys), queryTime)

	if errorCount > 0 {
		os.Exit(1)
	}
}
