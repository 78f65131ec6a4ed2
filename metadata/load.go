package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	yaml "gopkg.in/yaml.v3"
)

// LoadSampleData reads sample data from path.
func LoadSampleData(ctx context.Context, path string) (*SampleData, error) {
	m, err := readMap(ctx, path)
	if err != nil {
		return nil, err
	}
	return DecodeSampleData(m)
}

// LoadRefData reads reference data from path.
func LoadRefData(ctx context.Context, path string) (*RefData, error) {
	m, err := readMap(ctx, path)
	if err != nil {
		return nil, err
	}
	return DecodeRefData(m)
}

// LoadJobParams reads job parameter overrides from path.
func LoadJobParams(ctx context.Context, path string) (map[string]interface{}, error) {
	return readMap(ctx, path)
}

// readMap reads a JSON (.json) or YAML (anything else) document whose top
// level is a mapping. path may name any file supported by
// github.com/grailbio/base/file.
func readMap(ctx context.Context, path string) (m map[string]interface{}, err error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, f, &err)
	data, err := ioutil.ReadAll(f.Reader(ctx))
	if err != nil {
		return nil, errors.E(err, "read", path)
	}
	var doc interface{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, errors.E(errors.Invalid, "parse", path, err)
	}
	if doc == nil {
		return map[string]interface{}{}, nil
	}
	v, err := normalize(doc)
	if err != nil {
		return nil, errors.E(errors.Invalid, path, err)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("%s: top level is not a mapping", path))
	}
	return m, nil
}

// normalize converts the map[interface{}]interface{} values yaml.v3
// produces for mappings with non-string keys into map[string]interface{},
// recursively. Keys must be strings: YAML 1.2 keeps plain keys such as N
// or on as strings, so a non-string key is a quoting mistake in the file.
func normalize(v interface{}) (interface{}, error) {
	var err error
	switch v := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, e := range v {
			key, ok := k.(string)
			if !ok {
				return nil, errors.E(fmt.Sprintf("key %v is a %T, not a string", k, k))
			}
			if m[key], err = normalize(e); err != nil {
				return nil, err
			}
		}
		return m, nil
	case map[string]interface{}:
		for k, e := range v {
			if v[k], err = normalize(e); err != nil {
				return nil, err
			}
		}
		return v, nil
	case []interface{}:
		for i, e := range v {
			if v[i], err = normalize(e); err != nil {
				return nil, err
			}
		}
		return v, nil
	default:
		return v, nil
	}
}
