package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const contentTypeJSON = "application/json"

var ErrEmptyResponse = errors.New("empty response body")

func (s *Server) httpGet(path string) (any, error) {
	return s.httpDo(http.MethodGet, path, nil)
}

func (s *Server) httpPost(path string, payload any) (any, error) {
	return s.httpDo(http.MethodPost, path, payload)
}

func (s *Server) httpPut(path string, payload any) (any, error) {
	return s.httpDo(http.MethodPut, path, payload)
}

func (s *Server) httpDelete(path string) error {
	_, err := s.httpDo(http.MethodDelete, path, nil)
	return err
}

func (s *Server) httpDo(method, path string, payload any) (any, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK ||
		resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.New(string(data))
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	return decodeJSON(data)
}

func decodeJSON(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyResponse
	}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}
