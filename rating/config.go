package rating

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	DEFAULT_SALT       = "moevm"
	DEFAULT_INDEX_PAGE = "students.html"
)

// Config is the rating export configuration file (JSON or YAML).
type Config struct {
	Google struct {
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"google"`

	// Salt is mixed into the login hash that names each student's directory.
	Salt string `yaml:"salt"`

	// IndexPage is the file name of the page that lists every student.
	IndexPage string `yaml:"index_page"`

	Export []Table `yaml:"export"`
}

// Table selects the worksheet and columns published for one subject.
type Table struct {
	SpreadsheetKey   string            `yaml:"spreadsheet_key"`
	WorksheetName    string            `yaml:"worksheet_name"`
	Subject          string            `yaml:"subject"`
	CommonColumns    map[string]Column `yaml:"common_columns"`
	PublishedColumns Columns           `yaml:"published_columns"`
	OutDir           string            `yaml:"outdir_path"`
	HeaderRow        int               `yaml:"header_row"`
}

// Column is a column specifier: a 0-based index, a header name or a column letter.
type Column struct {
	Index   int
	Spec    string
	indexed bool
}

// Columns is a list of column ranges such as "D:F", "Lab 1:Lab 5" or "H". A single
// string is accepted in place of a list.
type Columns []string

// LoadConfig reads a rating export configuration file.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read rating configuration %v (%w)", path, err)
	}

	config := Config{}
	if err := yaml.Unmarshal(b, &config); err != nil {
		return nil, fmt.Errorf("invalid rating configuration %v (%w)", path, err)
	}

	if config.Salt == "" {
		config.Salt = DEFAULT_SALT
	}

	if config.IndexPage == "" {
		config.IndexPage = DEFAULT_INDEX_PAGE
	}

	return &config, nil
}

func (c *Column) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %v: invalid column specifier", node.Line)
	}

	if node.Tag == "!!int" {
		index, err := strconv.Atoi(node.Value)
		if err != nil || index < 0 {
			return fmt.Errorf("line %v: invalid column index '%v'", node.Line, node.Value)
		}

		*c = Column{Index: index, indexed: true}
		return nil
	}

	*c = Column{Spec: node.Value}

	return nil
}

func (c *Columns) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*c = Columns{node.Value}
		return nil

	case yaml.SequenceNode:
		list := []string{}
		if err := node.Decode(&list); err != nil {
			return err
		}

		*c = list
		return nil

	default:
		return fmt.Errorf("line %v: invalid published columns", node.Line)
	}
}
