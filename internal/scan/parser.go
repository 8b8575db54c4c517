// Package scan decodes scanned identifiers into target keys.
//
// Two payload shapes are accepted: a JSON object and an absolute URL whose
// query string carries the keys. Producers disagree on field names, so each
// key is looked up under several aliases; the first non-empty one wins.
package scan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"fieldcheck/internal/domain"
	"fieldcheck/pkg/e"
)

var (
	PrimaryAliases   = []string{"primaryKey", "primary_key", "pk", "code"}
	SecondaryAliases = []string{"secondaryKey", "secondary_key", "sk", "site"}
)

// Parse decodes payload into a target key. It has no side effects.
func Parse(payload string) (domain.TargetKey, error) {
	const op = "scan.Parse"

	payload = strings.TrimSpace(payload)
	if payload == "" {
		return domain.TargetKey{}, fmt.Errorf("%s: empty payload: %w", op, e.ErrMalformedPayload)
	}

	if fields, ok := decodeJSON(payload); ok {
		return keyFrom(op, func(name string) string { return fields[name] })
	}

	if q, ok := decodeURL(payload); ok {
		return keyFrom(op, q.Get)
	}

	return domain.TargetKey{}, fmt.Errorf("%s: neither JSON nor URL: %w", op, e.ErrMalformedPayload)
}

// EncodeJSON renders key in the structured shape.
func EncodeJSON(key domain.TargetKey) (string, error) {
	b, err := json.Marshal(map[string]string{
		PrimaryAliases[0]:   key.PrimaryKey,
		SecondaryAliases[0]: key.SecondaryKey,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// EncodeURL renders key as query parameters on base, keeping base's other
// parameters.
func EncodeURL(base string, key domain.TargetKey) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(PrimaryAliases[0], key.PrimaryKey)
	q.Set(SecondaryAliases[0], key.SecondaryKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func keyFrom(op string, get func(string) string) (domain.TargetKey, error) {
	key := domain.TargetKey{
		PrimaryKey:   firstOf(get, PrimaryAliases),
		SecondaryKey: firstOf(get, SecondaryAliases),
	}
	if key.PrimaryKey == "" || key.SecondaryKey == "" {
		return domain.TargetKey{}, fmt.Errorf("%s: missing key: %w", op, e.ErrMalformedPayload)
	}
	return key, nil
}

func firstOf(get func(string) string, aliases []string) string {
	for _, name := range aliases {
		if v := strings.TrimSpace(get(name)); v != "" {
			return v
		}
	}
	return ""
}

// decodeJSON accepts only a JSON object. String and number values are kept,
// anything else is ignored.
func decodeJSON(payload string) (map[string]string, bool) {
	if !strings.HasPrefix(payload, "{") {
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case json.Number:
			fields[k] = val.String()
		case bool:
			fields[k] = strconv.FormatBool(val)
		}
	}
	return fields, true
}

func decodeURL(payload string) (url.Values, bool) {
	u, err := url.Parse(payload)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	return u.Query(), true
}
