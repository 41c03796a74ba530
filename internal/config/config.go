package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	defaultNetwork = "sepolia"

	configFile    = "config.json"
	walletsFile   = "wallets.json"
	contractsFile = "contracts.json"
)

// Config holds all tokenctl configuration.
type Config struct {
	DefaultNetwork string `json:"default_network"`
	DefaultWallet  string `json:"default_wallet"`
	// ExplorerAPIKey authenticates ABI lookups against Etherscan-compatible
	// APIs; empty works for unauthenticated endpoints.
	ExplorerAPIKey string `json:"explorer_api_key,omitempty"`
	// CustomRPCs overrides the registry's RPC list per network.
	CustomRPCs map[string][]string `json:"custom_rpcs"`

	configDir string
}

// ContractEntry is a remembered deployed contract.
type ContractEntry struct {
	Name    string `json:"name"`
	Network string `json:"network"`
	Address string `json:"address"`
}

// ContractsFile is the structure of contracts.json.
type ContractsFile struct {
	// Default names the entry used when no --contract flag is given.
	Default   string          `json:"default,omitempty"`
	Contracts []ContractEntry `json:"contracts"`
}

// Load reads config from dir (or creates defaults). dir defaults to
// ~/.tokenctl.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".tokenctl")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := &Config{
		DefaultNetwork: defaultNetwork,
		CustomRPCs:     make(map[string][]string),
		configDir:      dir,
	}

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.DefaultNetwork == "" {
		cfg.DefaultNetwork = defaultNetwork
	}
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath returns the path of wallets.json.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// RPCsFor returns the custom RPC list for a network, or nil.
func (c *Config) RPCsFor(network string) []string {
	return c.CustomRPCs[network]
}

// LoadContracts reads contracts.json. A missing file yields an empty list.
func (c *Config) LoadContracts() (*ContractsFile, error) {
	data, err := os.ReadFile(filepath.Join(c.configDir, contractsFile))
	if os.IsNotExist(err) {
		return &ContractsFile{}, nil
	}
	if err != nil {
		return nil, err
	}
	var cf ContractsFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing contracts.json: %w", err)
	}
	return &cf, nil
}

// SaveContracts writes contracts.json.
func (c *Config) SaveContracts(cf *ContractsFile) error {
	data, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, contractsFile), data, 0o600)
}

// RememberContract upserts a contract entry and makes it the default.
func (c *Config) RememberContract(e ContractEntry) error {
	cf, err := c.LoadContracts()
	if err != nil {
		return err
	}
	replaced := false
	for i := range cf.Contracts {
		if cf.Contracts[i].Name == e.Name {
			cf.Contracts[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		cf.Contracts = append(cf.Contracts, e)
	}
	cf.Default = e.Name
	return c.SaveContracts(cf)
}

// FindContract resolves a contract entry by name, or the default entry
// when name is empty. ok is false if nothing matches.
func (c *Config) FindContract(name string) (ContractEntry, bool) {
	cf, err := c.LoadContracts()
	if err != nil {
		return ContractEntry{}, false
	}
	if name == "" {
		name = cf.Default
	}
	for _, e := range cf.Contracts {
		if e.Name == name {
			return e, true
		}
	}
	return ContractEntry{}, false
}
