package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// validator is implemented by every configuration group.
type validator interface {
	Validate(path string) error
}

// Read reads walking.json and kinematic.json from dir and validates them together.
func Read(dir string) (*Config, error) {
	walkingData, walkingErr := os.ReadFile(filepath.Join(dir, WalkingFile))
	kinematicData, kinematicErr := os.ReadFile(filepath.Join(dir, KinematicFile))
	return fromDocuments(walkingData, walkingErr, kinematicData, kinematicErr)
}

// FromJSON parses both documents and validates them together. On failure the returned error is an
// *Error listing every invalid group.
func FromJSON(walkingData, kinematicData []byte) (*Config, error) {
	return fromDocuments(walkingData, nil, kinematicData, nil)
}

func fromDocuments(walkingData []byte, walkingErr error, kinematicData []byte, kinematicErr error) (*Config, error) {
	var b errorBuilder
	cfg := &Config{
		Walking: Walking{Timing: Timing{TimeStep: DefaultTimeStep}},
	}

	if doc, err := parseDocument(walkingData, walkingErr); err != nil {
		b.check("walking", err)
	} else {
		b.check("walking.timing", decodeGroup(doc, "walking", "timing", &cfg.Walking.Timing, "time_step"))
		b.check("walking.posture", decodeGroup(doc, "walking", "posture", &cfg.Walking.Posture))
		b.check("walking.offset", decodeGroup(doc, "walking", "offset", &cfg.Walking.Offset))
		b.check("walking.stride", decodeGroup(doc, "walking", "stride", &cfg.Walking.Stride))
	}

	if doc, err := parseDocument(kinematicData, kinematicErr); err != nil {
		b.check("kinematic", err)
	} else {
		b.check("kinematic.leg", decodeGroup(doc, "kinematic", "leg", &cfg.Kinematic.Leg))
		b.check("kinematic.offset", decodeGroup(doc, "kinematic", "offset", &cfg.Kinematic.Offset))
	}

	if err := b.build(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseDocument(data []byte, readErr error) (map[string]interface{}, error) {
	if readErr != nil {
		return nil, errors.Wrap(readErr, "cannot read document")
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "cannot parse document")
	}
	if doc == nil {
		return nil, errors.New("document must be a json object")
	}
	return doc, nil
}

// decodeGroup decodes one section of a document into target. Every required key that is missing or
// null is reported, as is any value of the wrong type. The group's own Validate runs last.
func decodeGroup(doc map[string]interface{}, document, name string, target validator, optional ...string) error {
	path := document + "." + name
	raw, ok := doc[name]
	if !ok || raw == nil {
		return utils.NewConfigValidationFieldRequiredError(document, name)
	}
	section, ok := raw.(map[string]interface{})
	if !ok {
		return utils.NewConfigValidationError(path, errors.Errorf("expected an object but got %T", raw))
	}
	section = lo.OmitBy(section, func(_ string, v interface{}) bool { return v == nil })

	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata: &md,
		Result:   target,
		TagName:  "json",
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(section); err != nil {
		return utils.NewConfigValidationError(path, err)
	}

	missing := lo.Without(md.Unset, optional...)
	sort.Strings(missing)
	var errs error
	for _, field := range missing {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, field))
	}
	if errs != nil {
		return errs
	}
	return target.Validate(path)
}
