package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// clientFile is the on-disk client profile shape: a top-level "client" key
// wrapping the profile, in JSON or YAML.
type clientFile struct {
	Client Client `json:"client" yaml:"client"`
}

// LoadClient reads a client profile from a .json, .yaml, or .yml file and
// validates the personal section eagerly.
func LoadClient(path string) (*Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read client file %s", path)
	}

	var cf clientFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &cf); err != nil {
			return nil, eris.Wrapf(err, "model: parse client JSON %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cf); err != nil {
			return nil, eris.Wrapf(err, "model: parse client YAML %s", path)
		}
	default:
		return nil, eris.Errorf("model: unsupported client file extension %q", filepath.Ext(path))
	}

	c := cf.Client
	if err := c.Personal.Validate(); err != nil {
		return nil, eris.Wrap(err, "model: client personal info")
	}

	// Normalize the ZIP so downstream consumers always see five digits.
	zip, err := NormalizeZipcode(c.Personal.Zipcode)
	if err != nil {
		return nil, err
	}
	c.Personal.Zipcode = zip

	for i := range c.MedicalProfile.Providers {
		p := &c.MedicalProfile.Providers[i]
		p.Priority = ParsePriority(string(p.Priority))
		if p.VisitFrequency <= 0 {
			p.VisitFrequency = 1
		}
	}
	for i := range c.MedicalProfile.Medications {
		if c.MedicalProfile.Medications[i].AnnualDoses <= 0 {
			c.MedicalProfile.Medications[i].AnnualDoses = 1
		}
	}
	if c.Priorities == (Priorities{}) {
		c.Priorities = DefaultPriorities()
	}

	return &c, nil
}

// SampleClient returns a canned client profile for demos and smoke tests.
func SampleClient() Client {
	personal, _ := NewPersonalInfo("Sample Client", "1985-06-15", "85001", 2, 75000, false)
	return Client{
		Personal: personal,
		MedicalProfile: MedicalProfile{
			Providers: []Provider{
				{Name: "Dr. Smith", Specialty: "Primary Care", Priority: PriorityMustKeep, VisitFrequency: 2},
				{Name: "Dr. Johnson", Specialty: "Cardiology", Priority: PriorityNiceToKeep, VisitFrequency: 1},
			},
			Medications: []Medication{
				{Name: "Metformin", Dosage: "500mg", Frequency: "Daily", AnnualDoses: 365},
			},
		},
		Priorities: Priorities{
			KeepProviders:     5,
			MinimizeTotalCost: 4,
			PredictableCosts:  3,
			AvoidPriorAuth:    4,
			SimpleAdmin:       3,
		},
	}
}
