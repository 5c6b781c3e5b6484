package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"

	"github.com/proxydesk/proxydesk-terminal/pkg/models"
)

var ErrUnknownField = errors.New("unknown settings field")

// fieldCodec reads and writes one Settings key. set coerces loosely typed
// input (CLI strings, JSON numbers, maps) into the key's type.
type fieldCodec struct {
	get func(s *models.Settings) any
	set func(s *models.Settings, v any) error
}

var codecs = map[models.Field]fieldCodec{
	models.FieldLocalPort: {
		get: func(s *models.Settings) any { return s.LocalPort },
		set: intSetter(func(s *models.Settings, v int) { s.LocalPort = v }),
	},
	models.FieldPacPort: {
		get: func(s *models.Settings) any { return s.PacPort },
		set: intSetter(func(s *models.Settings, v int) { s.PacPort = v }),
	},
	models.FieldGfwListURL: {
		get: func(s *models.Settings) any { return s.GfwListURL },
		set: stringSetter(func(s *models.Settings, v string) { s.GfwListURL = strings.TrimSpace(v) }),
	},
	models.FieldLang: {
		get: func(s *models.Settings) any { return s.Lang },
		set: stringSetter(func(s *models.Settings, v string) { s.Lang = strings.TrimSpace(v) }),
	},
	models.FieldAutoLaunch: {
		get: func(s *models.Settings) any { return s.AutoLaunch },
		set: boolSetter(func(s *models.Settings, v bool) { s.AutoLaunch = v }),
	},
	models.FieldFixedMenu: {
		get: func(s *models.Settings) any { return s.FixedMenu },
		set: boolSetter(func(s *models.Settings, v bool) { s.FixedMenu = v }),
	},
	models.FieldDarkMode: {
		get: func(s *models.Settings) any { return s.DarkMode },
		set: boolSetter(func(s *models.Settings, v bool) { s.DarkMode = v }),
	},
	models.FieldAutoTheme: {
		get: func(s *models.Settings) any { return s.AutoTheme },
		set: boolSetter(func(s *models.Settings, v bool) { s.AutoTheme = v }),
	},
	models.FieldVerbose: {
		get: func(s *models.Settings) any { return s.Verbose },
		set: boolSetter(func(s *models.Settings, v bool) { s.Verbose = v }),
	},
	models.FieldAutoHide: {
		get: func(s *models.Settings) any { return s.AutoHide },
		set: boolSetter(func(s *models.Settings, v bool) { s.AutoHide = v }),
	},
	models.FieldHTTPProxy: {
		get: func(s *models.Settings) any { return s.HTTPProxy },
		set: func(s *models.Settings, v any) error {
			// Sub-fields absent from v keep their current values
			rec := s.HTTPProxy
			if err := decodeRecord(v, &rec); err != nil {
				return err
			}
			s.HTTPProxy = rec
			return nil
		},
	},
	models.FieldACL: {
		get: func(s *models.Settings) any { return s.ACL },
		set: func(s *models.Settings, v any) error {
			rec := s.ACL
			if err := decodeRecord(v, &rec); err != nil {
				return err
			}
			rec.URL = strings.TrimSpace(rec.URL)
			s.ACL = rec
			return nil
		},
	},
	models.FieldLoadBalance: {
		get: func(s *models.Settings) any { return s.LoadBalance },
		set: func(s *models.Settings, v any) error {
			// Absent sub-fields fall back to defaults, not to current values
			var partial models.PartialLoadBalance
			if err := decodeRecord(v, &partial); err != nil {
				return err
			}
			s.LoadBalance = partial.Resolve()
			return nil
		},
	},
}

func intSetter(assign func(*models.Settings, int)) func(*models.Settings, any) error {
	return func(s *models.Settings, v any) error {
		if str, ok := v.(string); ok {
			v = strings.TrimSpace(str)
		}
		n, err := cast.ToIntE(v)
		if err != nil {
			return fmt.Errorf("expected an integer: %w", err)
		}
		assign(s, n)
		return nil
	}
}

func boolSetter(assign func(*models.Settings, bool)) func(*models.Settings, any) error {
	return func(s *models.Settings, v any) error {
		if str, ok := v.(string); ok {
			v = strings.TrimSpace(str)
		}
		b, err := cast.ToBoolE(v)
		if err != nil {
			return fmt.Errorf("expected a boolean: %w", err)
		}
		assign(s, b)
		return nil
	}
}

func stringSetter(assign func(*models.Settings, string)) func(*models.Settings, any) error {
	return func(s *models.Settings, v any) error {
		str, err := cast.ToStringE(v)
		if err != nil {
			return fmt.Errorf("expected a string: %w", err)
		}
		assign(s, str)
		return nil
	}
}

// decodeRecord decodes a record value onto out. v may be the record type
// itself, a map, or a JSON object string.
func decodeRecord(v any, out any) error {
	if str, ok := v.(string); ok {
		var m map[string]any
		if err := json.Unmarshal([]byte(str), &m); err != nil {
			return fmt.Errorf("expected a JSON object: %w", err)
		}
		v = m
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}
	return nil
}

// GetField reads field from s
func GetField(s models.Settings, field models.Field) (any, error) {
	codec, ok := codecs[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return codec.get(&s), nil
}

// ApplyField returns a copy of s with field set to value
func ApplyField(s models.Settings, field models.Field, value any) (models.Settings, error) {
	codec, ok := codecs[field]
	if !ok {
		return s, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if err := codec.set(&s, value); err != nil {
		return s, fmt.Errorf("%s: %w", field, err)
	}
	return s, nil
}
