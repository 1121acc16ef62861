package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/bascanada/smartsearch/pkg/autocomplete"
	"github.com/bascanada/smartsearch/pkg/editor"
	"github.com/bascanada/smartsearch/pkg/query"
)

const autocompleteTimeout = 10 * time.Second

// QueryRequest is the body of /parse and /search
type QueryRequest struct {
	Query string `json:"query"`
	// Save persists the search as a recent search, /search only
	Save bool `json:"save,omitempty"`
}

// CursorRequest is the body of /autocomplete. A missing cursor means the
// end of the query.
type CursorRequest struct {
	Query  string `json:"query"`
	Cursor *int   `json:"cursor,omitempty"`
}

// Edit actions accepted by /edit
const (
	ActionAccept   = "accept"
	ActionDelete   = "delete"
	ActionNegate   = "negate"
	ActionNext     = "next"
	ActionPrevious = "previous"
	ActionBrackets = "brackets"
)

// EditRequest is the body of /edit
type EditRequest struct {
	Query  string                   `json:"query"`
	Cursor *int                     `json:"cursor,omitempty"`
	Action string                   `json:"action"`
	Item   *autocomplete.SearchItem `json:"item,omitempty"`
}

type TagsResponse struct {
	Tags []autocomplete.Tag `json:"tags"`
}

type ParseResponse struct {
	Query string `json:"query"`
	// Parsed is false when the text is not a well formed query
	Parsed  bool           `json:"parsed"`
	Valid   bool           `json:"valid"`
	Tokens  []*query.Token `json:"tokens"`
	Invalid []InvalidToken `json:"invalid,omitempty"`
}

// InvalidToken is a filter refused by validation
type InvalidToken struct {
	Text     string         `json:"text"`
	Location query.Location `json:"location"`
	Reason   string         `json:"reason"`
}

type SearchResponse struct {
	Query string `json:"query"`
	Saved bool   `json:"saved"`
}

type RecentResponse struct {
	Searches []autocomplete.RecentSearch `json:"searches"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) tagsHandler(w http.ResponseWriter, r *http.Request) {
	if !s.allowMethod(w, r, http.MethodGet) {
		return
	}
	_, engine := s.current()
	s.writeJSON(w, http.StatusOK, TagsResponse{Tags: engine.Catalog.Tags()})
}

func (s *Server) parseHandler(w http.ResponseWriter, r *http.Request) {
	if !s.allowMethod(w, r, http.MethodPost) {
		return
	}

	var req QueryRequest
	if !s.decode(w, r, &req) {
		return
	}

	_, engine := s.current()
	tree := engine.Catalog.Parse(req.Query)
	traceQuery(r.Context(), req.Query, len(req.Query), query.IsValid(tree))
	s.writeJSON(w, http.StatusOK, describe(req.Query, tree))
}

func describe(text string, tree *query.ParsedQuery) ParseResponse {
	resp := ParseResponse{
		Query:  text,
		Parsed: tree != nil,
		Valid:  query.IsValid(tree),
		Tokens: []*query.Token{},
	}
	if tree == nil {
		return resp
	}

	resp.Tokens = tree.Tokens
	for _, tok := range query.FilterTokens(tree) {
		if tok.IsInvalid() {
			resp.Invalid = append(resp.Invalid, InvalidToken{
				Text:     tok.Text,
				Location: tok.Location,
				Reason:   tok.Invalid,
			})
		}
	}
	return resp
}

func (s *Server) autocompleteHandler(w http.ResponseWriter, r *http.Request) {
	if !s.allowMethod(w, r, http.MethodPost) {
		return
	}

	var req CursorRequest
	if !s.decode(w, r, &req) {
		return
	}
	cursor, err := resolveCursor(req.Query, req.Cursor)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), autocompleteTimeout)
	defer cancel()

	_, engine := s.current()
	tree := engine.Catalog.Parse(req.Query)
	trace := traceQuery(r.Context(), req.Query, cursor, query.IsValid(tree))
	res := engine.Builder.Build(ctx, autocomplete.Request{
		Query:  req.Query,
		Tree:   tree,
		Cursor: cursor,
	})
	trace.result(res)
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) editHandler(w http.ResponseWriter, r *http.Request) {
	if !s.allowMethod(w, r, http.MethodPost) {
		return
	}

	var req EditRequest
	if !s.decode(w, r, &req) {
		return
	}
	cursor, err := resolveCursor(req.Query, req.Cursor)
	if err == nil {
		err = validateEditRequest(&req)
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		return
	}

	_, engine := s.current()
	tree := engine.Catalog.Parse(req.Query)
	traceQuery(r.Context(), req.Query, cursor, query.IsValid(tree)).action = req.Action

	var edit editor.Edit
	switch req.Action {
	case ActionAccept:
		edit = editor.Accept(req.Query, tree, cursor, *req.Item)
	case ActionDelete:
		edit = editor.DeleteToken(req.Query, tree, cursor)
	case ActionNegate:
		edit = editor.NegateToken(req.Query, tree, cursor)
	case ActionNext:
		edit = editor.MoveToToken(req.Query, tree, cursor, editor.Next)
	case ActionPrevious:
		edit = editor.MoveToToken(req.Query, tree, cursor, editor.Previous)
	case ActionBrackets:
		edit = editor.ExpandBrackets(req.Query, tree, cursor)
	}
	s.writeJSON(w, http.StatusOK, edit)
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	if !s.allowMethod(w, r, http.MethodPost) {
		return
	}

	var req QueryRequest
	if !s.decode(w, r, &req) {
		return
	}

	_, engine := s.current()
	tree := engine.Catalog.Parse(req.Query)
	traceQuery(r.Context(), req.Query, len(req.Query), query.IsValid(tree))
	if !query.IsValid(tree) {
		parsed := describe(req.Query, tree)
		details := map[string]interface{}{"invalid": parsed.Invalid}
		s.writeJSON(w, http.StatusUnprocessableEntity, APIError{
			Code:    ErrCodeInvalidQuery,
			Message: "The query has invalid filters",
			Details: details,
		})
		return
	}

	resp := SearchResponse{Query: strings.Join(strings.Fields(req.Query), " ")}

	if req.Save && resp.Query != "" {
		if engine.Saver == nil {
			s.writeError(w, http.StatusConflict, ErrCodeNotConfigured, "No recent search storage is configured")
			return
		}
		if err := engine.Saver.SaveRecentSearch(r.Context(), resp.Query); err != nil {
			s.logger.Error("failed to save recent search", "err", err)
			s.writeError(w, http.StatusBadGateway, ErrCodeBackendError, "Failed to save the recent search")
			return
		}
		resp.Saved = true
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) recentHandler(w http.ResponseWriter, r *http.Request) {
	if !s.allowMethod(w, r, http.MethodGet) {
		return
	}

	_, engine := s.current()
	if engine.Recent == nil {
		s.writeJSON(w, http.StatusOK, RecentResponse{Searches: []autocomplete.RecentSearch{}})
		return
	}

	searches, err := engine.Recent.FetchRecentSearches(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		s.logger.Error("failed to fetch recent searches", "err", err)
		s.writeError(w, http.StatusBadGateway, ErrCodeBackendError, "Failed to retrieve recent searches")
		return
	}
	if searches == nil {
		searches = []autocomplete.RecentSearch{}
	}
	s.writeJSON(w, http.StatusOK, RecentResponse{Searches: searches})
}

func (s *Server) openapiHandler(w http.ResponseWriter, r *http.Request) {
	if len(s.openapiSpec) == 0 {
		s.writeError(w, http.StatusNotFound, ErrCodeNotConfigured, "OpenAPI document not available")
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(s.openapiSpec); err != nil {
		s.logger.Error("failed to write openapi spec", "err", err)
	}
}

// decode reads a JSON body, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
