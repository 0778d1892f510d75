package config

// Preset is a named sizing bundle offered by the interactive menu.
type Preset struct {
	Name      string `json:"name"`
	RAMGB     int    `json:"ram_gb"`
	CPUCores  int    `json:"cpu_cores"`
	StorageGB int    `json:"storage_gb"`
}

// Presets returns the fixed preset table shown in the interactive menu,
// smallest first.
func Presets() []Preset {
	return []Preset{
		{Name: "small", RAMGB: 4, CPUCores: 2, StorageGB: 50},
		{Name: "medium", RAMGB: 8, CPUCores: 4, StorageGB: 100},
		{Name: "large", RAMGB: 16, CPUCores: 8, StorageGB: 200},
	}
}

// PresetByName looks up a preset by its menu name.
func PresetByName(name string) (Preset, bool) {
	for _, p := range Presets() {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
