package motion

import (
	"os"

	"gopkg.in/yaml.v3"
)

// scheduleFile is the on-disk form of an exported motion schedule.
type scheduleFile struct {
	Version string        `yaml:"version"`
	Spec    *Spec         `yaml:"spec"`
	Frames  []FrameMotion `yaml:"schedule"`
}

const scheduleVersion = "1.0"

// WriteSchedule dumps the Spec and its full frame schedule as YAML, for
// inspection or for replaying a run's camera path.
func WriteSchedule(s *Spec, path string) error {
	data, err := yaml.Marshal(&scheduleFile{
		Version: scheduleVersion,
		Spec:    s,
		Frames:  s.Schedule(),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadSchedule loads a schedule dump written by WriteSchedule.
func ReadSchedule(path string) (*Spec, []FrameMotion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var f scheduleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, err
	}
	if f.Spec != nil {
		// The unit vector is derived state and not serialized.
		dx, dy, err := ParseDirection(f.Spec.Direction)
		if err != nil {
			return nil, nil, err
		}
		f.Spec.DX, f.Spec.DY = dx, dy
	}
	return f.Spec, f.Frames, nil
}
