package agent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gonum.org/v1/gonum/spatial/r1"
	"gopkg.in/yaml.v3"

	"github.com/samuelfneumann/mdplearn/utils/floatutils"
)

// ErrInvalidConfig is returned when a Config cannot be used to create
// an agent
var ErrInvalidConfig = errors.New("invalid agent configuration")

// Valid ranges of hyperparameters
var (
	EpsilonRange = r1.Interval{Min: 0, Max: 1}
	AlphaRange   = r1.Interval{Min: math.SmallestNonzeroFloat64, Max: 1}
	GammaRange   = r1.Interval{Min: 0, Max: 1}
)

// Config represents a configuration for creating an agent. Not every
// field is used by every Type of agent:
//
//	Field         Used by
//	Epsilon       QLearning, ApproximateQLearning
//	Alpha         QLearning, ApproximateQLearning
//	Gamma         all
//	Iterations    ValueIteration
//	NumTraining   QLearning, ApproximateQLearning (enforced by controllers)
//	Extractor     ApproximateQLearning
type Config struct {
	Type        Type    `yaml:"agent" json:"agent" mapstructure:"agent"`
	Epsilon     float64 `yaml:"epsilon" json:"epsilon" mapstructure:"epsilon"`
	Alpha       float64 `yaml:"alpha" json:"alpha" mapstructure:"alpha"`
	Gamma       float64 `yaml:"gamma" json:"gamma" mapstructure:"gamma"`
	Iterations  int     `yaml:"iterations" json:"iterations" mapstructure:"iterations"`
	NumTraining int     `yaml:"numTraining" json:"numTraining" mapstructure:"numTraining"`
	Extractor   string  `yaml:"extractor" json:"extractor" mapstructure:"extractor"`
	Seed        uint64  `yaml:"seed" json:"seed" mapstructure:"seed"`
}

// DefaultConfig returns the default configuration for agents of type t
func DefaultConfig(t Type) Config {
	switch t {
	case ValueIteration:
		return Config{Type: t, Gamma: 0.9, Iterations: 100}

	case ApproximateQLearning:
		return Config{
			Type:      t,
			Epsilon:   0.05,
			Alpha:     0.2,
			Gamma:     0.8,
			Extractor: "identity",
		}

	default:
		return Config{Type: t, Epsilon: 0.05, Alpha: 0.2, Gamma: 0.8}
	}
}

// Validate ensures that the Config is valid for its own Type
func (c Config) Validate() error {
	if _, err := ParseType(string(c.Type)); err != nil {
		return err
	}
	return c.ValidateFor(c.Type)
}

// ValidateFor ensures that the Config can be used to create an agent of
// type t, checking only the fields agents of type t use
func (c Config) ValidateFor(t Type) error {
	if !floatutils.Contains(GammaRange, c.Gamma) {
		return fmt.Errorf("%w: gamma = %v must be in [0, 1]",
			ErrInvalidConfig, c.Gamma)
	}

	switch t {
	case ValueIteration:
		if c.Iterations < 0 {
			return fmt.Errorf("%w: iterations = %d cannot be negative",
				ErrInvalidConfig, c.Iterations)
		}

	case QLearning, ApproximateQLearning:
		if !floatutils.Contains(EpsilonRange, c.Epsilon) {
			return fmt.Errorf("%w: epsilon = %v must be in [0, 1]",
				ErrInvalidConfig, c.Epsilon)
		}
		if !floatutils.Contains(AlphaRange, c.Alpha) {
			return fmt.Errorf("%w: alpha = %v must be in (0, 1]",
				ErrInvalidConfig, c.Alpha)
		}
		if c.NumTraining < 0 {
			return fmt.Errorf("%w: numTraining = %d cannot be negative",
				ErrInvalidConfig, c.NumTraining)
		}
		if t == ApproximateQLearning && c.Extractor == "" {
			return fmt.Errorf("%w: no feature extractor specified",
				ErrInvalidConfig)
		}

	default:
		return fmt.Errorf("%w: unknown agent type %q", ErrInvalidConfig, t)
	}
	return nil
}

// ParseOptions parses agent options written as comma separated
// key=value pairs, for example "epsilon=0.1,alpha=0.3"
func ParseOptions(options string) (map[string]string, error) {
	opts := make(map[string]string)
	for _, pair := range strings.Split(options, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: malformed option %q, want key=value",
				ErrInvalidConfig, pair)
		}
		opts[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return opts, nil
}

// ConfigFromOptions returns base with the fields named in options
// overwritten. Values are converted from strings as needed, and the
// key "discount" is accepted as an alias of "gamma". The returned
// Config is not validated.
func ConfigFromOptions(base Config, options map[string]string) (Config, error) {
	raw := make(map[string]interface{}, len(options))
	for k, v := range options {
		raw[k] = v
	}
	return decode(base, raw)
}

// LoadConfig reads a Config from a YAML or JSON file, starting from
// the defaults for the agent type named in the file. The file is
// decoded as JSON if its extension is .json and as YAML otherwise. The
// returned Config is validated.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not read %v: %w",
			path, err)
	}

	raw := make(map[string]interface{})
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		// Numbers are kept as text so large seeds are not rounded
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: could not parse %v: %v",
			ErrInvalidConfig, path, err)
	}

	base := DefaultConfig(QLearning)
	if name, ok := raw["agent"]; ok {
		t, err := ParseType(fmt.Sprint(name))
		if err != nil {
			return Config{}, err
		}
		base = DefaultConfig(t)
	}

	c, err := decode(base, raw)
	if err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

// decode overwrites the fields of base named in raw
func decode(base Config, raw map[string]interface{}) (Config, error) {
	for k, v := range raw {
		if strings.EqualFold(k, "discount") {
			if _, ok := raw["gamma"]; ok {
				return Config{}, fmt.Errorf("%w: both gamma and discount "+
					"specified", ErrInvalidConfig)
			}
			delete(raw, k)
			raw["gamma"] = v
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &base,
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return base, nil
}

func (c Config) String() string {
	str := "Config | Agent: %v  |  Epsilon: %v  |  Alpha: %v  |  Gamma: %v" +
		"  |  Iterations: %d  |  NumTraining: %d  |  Extractor: %q"
	return fmt.Sprintf(str, c.Type, c.Epsilon, c.Alpha, c.Gamma,
		c.Iterations, c.NumTraining, c.Extractor)
}
