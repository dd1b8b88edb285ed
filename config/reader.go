package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"reflect"
	"sort"

	"github.com/a8m/envsubst"
	"github.com/invopop/jsonschema"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"go.viam.com/teleop/logging"
)

// Read reads a config from the given file. Environment variables such as ${TEAM} are expanded
// before the file is decoded.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	cfg := Config{
		ConfigFilePath: originalPath,
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}
	if err := cfg.Ensure(); err != nil {
		return nil, errors.Wrapf(err, "failed to process Config")
	}
	logger.Debugw("read config", "path", originalPath, "ports", cfg.SortedPorts())
	return &cfg, nil
}

// String prints out a table of every motor with columns of port, name, polarity and gearset.
func (c *Config) String() string {
	type row struct {
		port     int
		name     string
		reversed bool
		gearset  string
	}
	var rows []row
	for i, m := range c.Chassis.Left {
		rows = append(rows, row{m.AbsPort(), fmt.Sprintf("chassis.left.%d", i), m.Reversed(), string(m.Gearset)})
	}
	for i, m := range c.Chassis.Right {
		rows = append(rows, row{m.AbsPort(), fmt.Sprintf("chassis.right.%d", i), m.Reversed(), string(m.Gearset)})
	}
	rows = append(rows,
		row{c.Intake.AbsPort(), "intake", c.Intake.Reversed(), string(c.Intake.Gearset)},
		row{c.Hopper.AbsPort(), "hopper", c.Hopper.Reversed(), string(c.Hopper.Gearset)},
	)
	sort.Slice(rows, func(i, j int) bool { return rows[i].port < rows[j].port })

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Port", "Motor", "Reversed", "Gearset"})
	for _, r := range rows {
		gearset := r.gearset
		if gearset == "" {
			gearset = "green"
		}
		t.AppendRow(table.Row{r.port, r.name, r.reversed, gearset})
	}
	return t.Render()
}

// Schema returns the JSON schema of the config file.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{Namer: qualifiedTypeName}
	return json.MarshalIndent(r.Reflect(&Config{}), "", "  ")
}

// qualifiedTypeName names schema definitions by package so that config.Config, wheeled.Config and
// motor.Config stay distinct.
func qualifiedTypeName(t reflect.Type) string {
	if t.Name() == "" {
		return ""
	}
	return path.Base(t.PkgPath()) + "." + t.Name()
}
