package integrator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance.
var validate = validator.New()

// DefaultPort is the SMTP relay port assumed when the configuration does
// not specify one.
const DefaultPort = 25

// AuthType is the mechanism used to authenticate against the SMTP relay.
type AuthType string

// Recognized auth types. Values are case-sensitive.
const (
	AuthNone        AuthType = "none"
	AuthNotProvided AuthType = "not_provided"
	AuthPlain       AuthType = "plain"
)

// TransportSecurity is the security protocol used when talking to the
// SMTP relay.
type TransportSecurity string

// Recognized transport security protocols. Values are case-sensitive.
const (
	TransportNone     TransportSecurity = "none"
	TransportStartTLS TransportSecurity = "starttls"
	TransportTLS      TransportSecurity = "tls"
)

// RawConfig is the untyped configuration snapshot as supplied by the
// operator. It is read once per notification and never retained.
type RawConfig map[string]any

// Configuration option names recognized by BuildRelayConfig. Anything
// else in a RawConfig is ignored unless extra-field capture is enabled.
const (
	KeyHost              = "host"
	KeyPort              = "port"
	KeyUser              = "user"
	KeyPassword          = "password"
	KeyAuthType          = "auth_type"
	KeyTransportSecurity = "transport_security"
	KeyDomain            = "domain"
	KeySkipSSLVerify     = "skip_ssl_verify"
)

var knownConfigKeys = map[string]struct{}{
	KeyHost:              {},
	KeyPort:              {},
	KeyUser:              {},
	KeyPassword:          {},
	KeyAuthType:          {},
	KeyTransportSecurity: {},
	KeyDomain:            {},
	KeySkipSSLVerify:     {},
}

// RelayConfig is a validated, immutable snapshot of the SMTP relay
// connection parameters. Instances only exist when every field passed its
// type and enum checks; construct one with BuildRelayConfig.
type RelayConfig struct {
	// Host is the hostname or IP address of the outgoing SMTP relay.
	// It is the only mandatory field.
	Host string `validate:"required"`

	// Port is the TCP port of the outgoing SMTP relay.
	Port int `validate:"min=1,max=65535"`

	// User is the SMTP AUTH user, if any.
	User string

	// Password is the SMTP AUTH password, if any. Modern channels never
	// see this value directly; they receive a secret reference instead.
	Password string

	// AuthType is the mechanism used to authenticate against the relay.
	AuthType AuthType `validate:"oneof=none not_provided plain"`

	// TransportSecurity is the security protocol used for the relay.
	TransportSecurity TransportSecurity `validate:"oneof=none starttls tls"`

	// Domain is the domain used by mail sent through the relay, if any.
	Domain string

	// SkipSSLVerify disables certificate verification against the relay.
	SkipSSLVerify bool

	// Extra holds unrecognized configuration options. It is only
	// populated when WithExtraFields is passed to BuildRelayConfig.
	Extra map[string]string
}

// ConfigError reports a configuration snapshot that failed validation.
type ConfigError struct {
	// Reason is a human-readable explanation suitable for operator status.
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// configError builds a *ConfigError wrapped in nothing, kept as a helper
// so call sites stay short.
func configError(reason string) error {
	return &ConfigError{Reason: reason}
}

// IsConfigError reports whether err is (or wraps) a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// BuildOption adjusts how BuildRelayConfig interprets a raw snapshot.
type BuildOption func(*buildConfig)

type buildConfig struct {
	captureExtra bool
}

// WithExtraFields captures unrecognized configuration options into
// RelayConfig.Extra instead of silently dropping them. Unknown options
// are never treated as errors either way.
func WithExtraFields() BuildOption {
	return func(c *buildConfig) {
		c.captureExtra = true
	}
}

// configRules maps struct fields to their operator-facing failure
// messages, in the order the checks are applied.
var configRules = []struct {
	field   string
	message string
}{
	{"Host", "host is required"},
	{"Port", "invalid port"},
	{"AuthType", "invalid auth_type"},
	{"TransportSecurity", "invalid transport_security"},
	{"SkipSSLVerify", "invalid skip_ssl_verify"},
}

// BuildRelayConfig parses a raw configuration snapshot into a validated
// RelayConfig. Validation short-circuits on the first failing rule and
// returns a *ConfigError with a human-readable reason:
//
//   - "host is required" when host is missing or empty
//   - "invalid port" when port does not parse or falls outside 1..65535
//   - "invalid auth_type" when auth_type is not none/not_provided/plain
//   - "invalid transport_security" when transport_security is not
//     none/starttls/tls
//   - "invalid skip_ssl_verify" when skip_ssl_verify is not boolean
//
// Absent optional fields take their defaults: port 25, auth_type none,
// transport_security none, skip_ssl_verify false.
func BuildRelayConfig(raw RawConfig, opts ...BuildOption) (RelayConfig, error) {
	var bc buildConfig
	for _, opt := range opts {
		opt(&bc)
	}

	cfg := RelayConfig{
		Port:              DefaultPort,
		AuthType:          AuthNone,
		TransportSecurity: TransportNone,
	}

	cfg.Host = stringOption(raw, KeyHost)
	cfg.User = stringOption(raw, KeyUser)
	cfg.Password = stringOption(raw, KeyPassword)
	cfg.Domain = stringOption(raw, KeyDomain)

	// Coercion failures are collected rather than returned immediately so
	// the failure reason always follows the rule order: an uncoercible
	// port must not mask a missing host.
	failed := make(map[string]bool)
	if v, ok := raw[KeyPort]; ok {
		if port, ok := intValue(v); ok {
			cfg.Port = port
		} else {
			failed["Port"] = true
		}
	}
	if v := stringOption(raw, KeyAuthType); v != "" {
		cfg.AuthType = AuthType(v)
	} else if _, ok := raw[KeyAuthType]; ok {
		// Present but empty or not a string; either way not a member of
		// the enum.
		failed["AuthType"] = true
	}
	if v := stringOption(raw, KeyTransportSecurity); v != "" {
		cfg.TransportSecurity = TransportSecurity(v)
	} else if _, ok := raw[KeyTransportSecurity]; ok {
		failed["TransportSecurity"] = true
	}
	if v, ok := raw[KeySkipSSLVerify]; ok {
		if b, ok := boolValue(v); ok {
			cfg.SkipSSLVerify = b
		} else {
			failed["SkipSSLVerify"] = true
		}
	}

	var verrs validator.ValidationErrors
	if err := validate.Struct(cfg); err != nil && !errors.As(err, &verrs) {
		return RelayConfig{}, configError(err.Error())
	}
	for _, rule := range configRules {
		if failed[rule.field] {
			return RelayConfig{}, configError(rule.message)
		}
		for _, fe := range verrs {
			if fe.StructField() == rule.field {
				return RelayConfig{}, configError(rule.message)
			}
		}
	}

	if bc.captureExtra {
		for k, v := range raw {
			if _, known := knownConfigKeys[k]; known {
				continue
			}
			if cfg.Extra == nil {
				cfg.Extra = make(map[string]string)
			}
			cfg.Extra[k] = stringify(v)
		}
	}

	return cfg, nil
}

// stringOption fetches a string-typed option, returning "" when the
// option is absent or not a string.
func stringOption(raw RawConfig, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// intValue coerces the numeric representations that JSON and YAML
// decoders produce, plus decimal strings.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		// JSON numbers decode as float64; reject fractional ports.
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// boolValue coerces booleans and their common string spellings.
func boolValue(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

// stringify renders an extra-field value for capture.
func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
