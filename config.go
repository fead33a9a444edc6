package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"gopkg.in/yaml.v2"
)

const configFile = "gox.yml"

type goxModule struct {
	Name     string `yaml:"name"`
	Strict   *bool  `yaml:"strict,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
	ErrorLog string `yaml:"error_log,omitempty"`
}

// settings is the merged result of gox.yml and the command line.
type settings struct {
	strict   bool
	logLevel string
	errorLog string
	trace    bool
}

func defaultSettings() settings {
	return settings{strict: true, logLevel: "info"}
}

// loadModule reads path. A missing file is not an error and yields an empty
// module.
func loadModule(path string) (goxModule, error) {
	data, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return goxModule{}, nil
	}
	if err != nil {
		return goxModule{}, fmt.Errorf("error reading %s: %w", path, err)
	}

	var doc goxModule
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return goxModule{}, fmt.Errorf("error reading %s: %w", path, err)
	}
	return doc, nil
}

func (m goxModule) apply(s settings) settings {
	if m.Strict != nil {
		s.strict = *m.Strict
	}
	if m.LogLevel != "" {
		s.logLevel = m.LogLevel
	}
	if m.ErrorLog != "" {
		s.errorLog = m.ErrorLog
	}
	return s
}

func writeModule(path, name string) error {
	strict := true
	out, err := yaml.Marshal(goxModule{Name: name, Strict: &strict})
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}

	fi, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	defer fi.Close()

	if _, err := fi.Write(out); err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	return nil
}
