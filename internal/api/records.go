package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/sqlguard/internal/guard"
)

// selectRequest is the request body for POST /tables/{table}/select
// and /select-one. OrderBy and Limit are ignored by select-one.
type selectRequest struct {
	Columns string `json:"columns"`
	Where   string `json:"where"`
	Params  []any  `json:"params"`
	OrderBy string `json:"order_by"`
	Limit   string `json:"limit"`
}

// writeRequest is the request body for POST /tables/{table}/insert and
// /update. Data is kept raw so key order can be preserved during
// decoding; Go maps would lose it.
type writeRequest struct {
	Data   json.RawMessage `json:"data"`
	Where  string          `json:"where"`
	Params []any           `json:"params"`
}

// deleteRequest is the request body for POST /tables/{table}/delete.
type deleteRequest struct {
	Where  string `json:"where"`
	Params []any  `json:"params"`
}

// queryRequest is the request body for POST /query.
type queryRequest struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

// decodeBody decodes a JSON request body into v, with numbers kept as
// json.Number so integer and float parameters bind with distinct tags.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

func (s *Server) handleSelectAll(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	var req selectRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	params, err := paramValues(req.Params)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	res := s.store.SelectAll(r.Context(), table, req.Columns, req.Where, params, req.OrderBy, req.Limit)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSelectOne(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	var req selectRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	params, err := paramValues(req.Params)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	res := s.store.SelectOne(r.Context(), table, req.Columns, req.Where, params)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	var req writeRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	data, err := decodeFields(req.Data)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	res := s.store.Insert(r.Context(), table, data)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	var req writeRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	data, err := decodeFields(req.Data)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	params, err := paramValues(req.Params)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	res := s.store.Update(r.Context(), table, data, req.Where, params)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	var req deleteRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	params, err := paramValues(req.Params)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	res := s.store.Delete(r.Context(), table, req.Where, params)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.SQL == "" {
		writeBadRequest(w, "sql is required")
		return
	}
	params, err := paramValues(req.Params)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	res := s.store.Query(r.Context(), req.SQL, params)
	writeJSON(w, http.StatusOK, res)
}

// decodeFields parses a raw JSON object into an ordered field sequence.
// A streaming token walk is used instead of map decoding because the
// object's key order fixes the placeholder order of the generated SQL.
func decodeFields(raw json.RawMessage) ([]guard.Field, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid data object")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("data must be a JSON object")
	}

	var fields []guard.Field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid data object")
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("invalid data object")
		}

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("invalid value for column %q", key)
		}
		val, err := jsonValue(v)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", key, err)
		}
		fields = append(fields, guard.Field{Column: key, Value: val})
	}
	return fields, nil
}

// paramValues converts decoded JSON parameters into tagged values,
// preserving order.
func paramValues(in []any) ([]guard.Value, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]guard.Value, len(in))
	for i, v := range in {
		val, err := jsonValue(v)
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		out[i] = val
	}
	return out, nil
}

// jsonValue converts one decoded JSON scalar into a tagged value.
// Numbers without a fractional part bind as integers.
func jsonValue(v any) (guard.Value, error) {
	switch t := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return guard.Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return guard.Value{}, fmt.Errorf("invalid number %q", t)
		}
		return guard.Float(f), nil
	case string:
		return guard.Text(t), nil
	case bool, nil:
		return guard.ValueOf(t), nil
	default:
		return guard.Value{}, fmt.Errorf("value must be a scalar, got %T", v)
	}
}
