// Command customer-api is an in-memory stand-in for the json-server customer
// collection, for local runs and the e2e suite when Node is not around.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultPort       = "3000"
	defaultCollection = "clientes"
	defaultLatencyMs  = "0"
)

type record map[string]any

func (r record) id() string {
	s, _ := r["id"].(string)
	return s
}

func (r record) text(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

type collection struct {
	mu      sync.RWMutex
	records []record
}

var (
	latencyMs = getEnvInt("LATENCY_MS", defaultLatencyMs)
	// FAIL_EVERY=n answers every nth request with 503
	failEvery = getEnvInt("FAIL_EVERY", "0")
	requests  int
	reqMu     sync.Mutex
)

func main() {
	port := getEnv("PORT", defaultPort)
	name := getEnv("COLLECTION", defaultCollection)

	c := &collection{}
	if seed := os.Getenv("SEED_FILE"); seed != "" {
		if err := c.load(seed); err != nil {
			log.Fatalf("seed %s: %v", seed, err)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /"+name, c.handleList)
	mux.HandleFunc("POST /"+name, c.handleCreate)
	mux.HandleFunc("GET /"+name+"/{id}", c.handleGet)
	mux.HandleFunc("PATCH /"+name+"/{id}", c.handlePatch)
	mux.HandleFunc("PUT /"+name+"/{id}", c.handlePatch)
	mux.HandleFunc("DELETE /"+name+"/{id}", c.handleDelete)

	log.Printf("mock customer API on :%s/%s (%d records, latency %dms)", port, name, len(c.records), latencyMs)
	if err := http.ListenAndServe(":"+port, simulate(mux)); err != nil {
		log.Fatal(err)
	}
}

// simulate adds the configured latency and injected failures.
func simulate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if latencyMs > 0 {
			time.Sleep(time.Duration(latencyMs) * time.Millisecond)
		}
		if failEvery > 0 && r.URL.Path != "/health" {
			reqMu.Lock()
			requests++
			fail := requests%failEvery == 0
			reqMu.Unlock()
			if fail {
				sendError(w, "injected failure", http.StatusServiceUnavailable)
				return
			}
		}
		log.Printf("%s %s", r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "customer-api"})
}

func (c *collection) load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var db map[string][]record
	if err := json.Unmarshal(data, &db); err != nil {
		return err
	}
	c.records = db[getEnv("COLLECTION", defaultCollection)]
	return nil
}

// handleList supports the json-server subset the gateway uses: exact field
// filters, field_like regex filters, _sort/_order and _page/_limit with
// X-Total-Count.
func (c *collection) handleList(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	type likeFilter struct {
		field string
		re    *regexp.Regexp
	}
	var (
		exact = map[string]string{}
		likes []likeFilter
	)
	for key, values := range params {
		if strings.HasPrefix(key, "_") || len(values) == 0 {
			continue
		}
		if field, ok := strings.CutSuffix(key, "_like"); ok {
			re, err := regexp.Compile("(?i)" + values[0])
			if err != nil {
				sendError(w, "invalid pattern for "+key, http.StatusBadRequest)
				return
			}
			likes = append(likes, likeFilter{field: field, re: re})
			continue
		}
		exact[key] = values[0]
	}

	c.mu.RLock()
	matched := make([]record, 0, len(c.records))
	for _, rec := range c.records {
		ok := true
		for field, want := range exact {
			if rec.text(field) != want {
				ok = false
				break
			}
		}
		for _, l := range likes {
			if ok && !l.re.MatchString(rec.text(l.field)) {
				ok = false
			}
		}
		if ok {
			matched = append(matched, rec)
		}
	}
	c.mu.RUnlock()

	if field := params.Get("_sort"); field != "" {
		desc := strings.EqualFold(params.Get("_order"), "desc")
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := matched[i].text(field), matched[j].text(field)
			if desc {
				return a > b
			}
			return a < b
		})
	}

	total := len(matched)
	if page, limit := atoi(params.Get("_page")), atoi(params.Get("_limit")); page > 0 && limit > 0 {
		start := (page - 1) * limit
		end := start + limit
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}
		matched = matched[start:end]
		w.Header().Set("X-Total-Count", strconv.Itoa(total))
		w.Header().Set("Access-Control-Expose-Headers", "X-Total-Count")
	}
	writeJSON(w, http.StatusOK, matched)
}

func (c *collection) handleGet(w http.ResponseWriter, r *http.Request) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(r.PathValue("id")); i >= 0 {
		writeJSON(w, http.StatusOK, c.records[i])
		return
	}
	sendError(w, "not found", http.StatusNotFound)
}

func (c *collection) handleCreate(w http.ResponseWriter, r *http.Request) {
	var rec record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil || rec == nil {
		sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if rec.id() == "" || c.indexOf(rec.id()) >= 0 {
		rec["id"] = c.freeID()
	}
	c.records = append(c.records, rec)
	writeJSON(w, http.StatusCreated, rec)
}

func (c *collection) handlePatch(w http.ResponseWriter, r *http.Request) {
	var patch record
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(r.PathValue("id"))
	if i < 0 {
		sendError(w, "not found", http.StatusNotFound)
		return
	}
	if r.Method == http.MethodPut {
		c.records[i] = record{"id": c.records[i].id()}
	}
	for k, v := range patch {
		if k != "id" {
			c.records[i][k] = v
		}
	}
	writeJSON(w, http.StatusOK, c.records[i])
}

func (c *collection) handleDelete(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(r.PathValue("id"))
	if i < 0 {
		sendError(w, "not found", http.StatusNotFound)
		return
	}
	removed := c.records[i]
	c.records = append(c.records[:i], c.records[i+1:]...)
	writeJSON(w, http.StatusOK, removed)
}

func (c *collection) indexOf(recordID string) int {
	for i, rec := range c.records {
		if rec.id() == recordID {
			return i
		}
	}
	return -1
}

// freeID returns a short hex id not yet taken, like json-server does.
func (c *collection) freeID() string {
	b := make([]byte, 2)
	for {
		_, _ = rand.Read(b)
		if candidate := hex.EncodeToString(b); c.indexOf(candidate) < 0 {
			return candidate
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func sendError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	})
	log.Printf("error response: %d - %s", code, message)
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key, defaultValue string) int {
	value := getEnv(key, defaultValue)
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid integer value for %s, using default: %s", key, defaultValue)
		intValue, _ = strconv.Atoi(defaultValue)
	}
	return intValue
}
