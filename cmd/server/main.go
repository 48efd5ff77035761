package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"

	dmnfeel "github.com/ritamzico/dmnfeel"
)

var allowedOrigins = []string{
	"http://localhost:5173",
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	port := flag.Int("port", 8080, "port to listen on")
	flag.Parse()

	mux := http.NewServeMux()

	mux.HandleFunc("/evaluate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var body struct {
			Model    json.RawMessage `json:"model"`
			Decision string          `json:"decision"`
			Inputs   map[string]any  `json:"inputs"`
			AllRoots bool            `json:"all_roots"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if len(body.Model) == 0 {
			writeError(w, http.StatusBadRequest, "missing field: model")
			return
		}
		if !body.AllRoots && body.Decision == "" {
			writeError(w, http.StatusBadRequest, "missing field: decision")
			return
		}

		m, err := dmnfeel.Load(bytes.NewReader(body.Model))
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid model: %v", err))
			return
		}

		inputs := make(map[string]dmnfeel.Value, len(body.Inputs))
		for name, raw := range body.Inputs {
			v, err := dmnfeel.ValueFromJSON(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			inputs[name] = v
		}

		var res dmnfeel.EvaluationResult
		if body.AllRoots {
			res, err = m.EvaluateAll(inputs)
		} else {
			res, err = m.Evaluate(body.Decision, inputs)
		}
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		b, err := dmnfeel.MarshalResultJSON(res)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	})

	addr := fmt.Sprintf(":%d", *port)
	fmt.Printf("dmnfeel server listening on %s\n", addr)
	if err := http.ListenAndServe(addr, corsMiddleware(mux)); err != nil {
		fmt.Fprintf(flag.CommandLine.Output(), "server error: %v\n", err)
	}
}
