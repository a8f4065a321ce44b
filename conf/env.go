package conf

// EnvironmentEnum deployment environment selector
type EnvironmentEnum string

const (
	LocalEnvironmentEnum   EnvironmentEnum = "loc"
	ProdEnvironmentEnum    EnvironmentEnum = "prod"
	ExampleEnvironmentEnum EnvironmentEnum = "example"
)

// SystemEnvironmentEnum current environment, set by main before InitConfig
var SystemEnvironmentEnum = ProdEnvironmentEnum

// GetYaml returns the config file path for the current environment
func GetYaml() string {
	switch SystemEnvironmentEnum {
	case LocalEnvironmentEnum:
		return "./conf/config_loc.yaml"
	case ExampleEnvironmentEnum:
		return "./conf/config_example.yaml"
	default:
		return "./conf/config.yaml"
	}
}
