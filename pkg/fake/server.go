/*
Copyright The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package fake provides an in-process MCN API double for harness tests, with
// per-endpoint behavior injection and a record of every request received.
package fake

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Request is one recorded call, in arrival order.
type Request struct {
	Method string
	Path   string
	Body   []byte
}

// Server is a fake MCN VPC/subnet API.
type Server struct {
	mu sync.Mutex

	srv      *httptest.Server
	requests []Request

	nextVPC    int
	nextSubnet int

	// behavior knobs
	createStatus  int            // non-zero forces this status on creates
	createBody    string         // body used with createStatus
	omitIDs       bool           // 2xx creates without an identifier field
	failDeleteIDs map[string]int // resource ID -> status for DELETE
}

func NewServer() *Server {
	s := &Server{failDeleteIDs: map[string]int{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/cloud/vpc", s.handleCreateVPC)
	mux.HandleFunc("/cloud/vpc/", s.handleDelete("VPC"))
	mux.HandleFunc("/cloud/create-subnet", s.handleCreateSubnet)
	mux.HandleFunc("/cloud/subnet/", s.handleDelete("Subnet"))
	s.srv = httptest.NewServer(mux)
	return s
}

func (s *Server) URL() string {
	return s.srv.URL
}

func (s *Server) Close() {
	s.srv.Close()
}

// Requests returns every recorded request in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// DeletePaths returns the paths of recorded DELETE calls, in order.
func (s *Server) DeletePaths() []string {
	var out []string
	for _, r := range s.Requests() {
		if r.Method == http.MethodDelete {
			out = append(out, r.Path)
		}
	}
	return out
}

// SetCreateResponse forces every subsequent create to answer with the given
// status and raw body.
func (s *Server) SetCreateResponse(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createStatus = status
	s.createBody = body
}

// OmitIDs makes creates succeed without an identifier field in the body.
func (s *Server) OmitIDs(omit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omitIDs = omit
}

// FailDelete makes DELETE of the given resource ID answer with status.
func (s *Server) FailDelete(id string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDeleteIDs[id] = status
}

func (s *Server) record(r *http.Request, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: body})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.record(r, nil)
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func (s *Server) handleCreateVPC(w http.ResponseWriter, r *http.Request) {
	payload := s.readCreate(w, r)
	if payload == nil {
		return
	}

	s.mu.Lock()
	if s.createStatus != 0 {
		status, body := s.createStatus, s.createBody
		s.mu.Unlock()
		writeRaw(w, status, body)
		return
	}
	s.nextVPC++
	id := fmt.Sprintf("vpc-%08d", s.nextVPC)
	omit := s.omitIDs
	s.mu.Unlock()

	resp := map[string]interface{}{
		"message": "VPC created successfully",
		"data":    payload,
	}
	if !omit {
		resp["id"] = id
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateSubnet(w http.ResponseWriter, r *http.Request) {
	payload := s.readCreate(w, r)
	if payload == nil {
		return
	}

	s.mu.Lock()
	if s.createStatus != 0 {
		status, body := s.createStatus, s.createBody
		s.mu.Unlock()
		writeRaw(w, status, body)
		return
	}
	s.nextSubnet++
	id := fmt.Sprintf("subnet-%08d", s.nextSubnet)
	omit := s.omitIDs
	s.mu.Unlock()

	resp := map[string]interface{}{
		"message": "Subnet created successfully",
		"data":    payload,
	}
	if !omit {
		resp["subnetId"] = id
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDelete(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.record(r, nil)
		if r.Method != http.MethodDelete {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{"message": "method not allowed"})
			return
		}
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

		s.mu.Lock()
		status, failed := s.failDeleteIDs[id]
		s.mu.Unlock()
		if failed {
			writeJSON(w, status, map[string]interface{}{"message": fmt.Sprintf("%s %s could not be deleted", kind, id)})
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": fmt.Sprintf("%s %s deleted successfully", kind, id),
		})
	}
}

func (s *Server) readCreate(w http.ResponseWriter, r *http.Request) map[string]interface{} {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		body = nil
	}
	s.record(r, body)

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{"message": "method not allowed"})
		return nil
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "invalid JSON payload"})
		return nil
	}
	return payload
}

func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
