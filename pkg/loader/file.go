package loader

// File is the on-disk shape of a network document. JSON input decodes
// through the same tags since JSON is valid YAML.
type File struct {
	Name     string         `yaml:"name,omitempty"`
	Devices  []DeviceEntry  `yaml:"devices,omitempty"`
	Networks []NetworkEntry `yaml:"networks,omitempty"`
	Subnets  []SubnetEntry  `yaml:"subnets,omitempty"`
	Routers  []RouterEntry  `yaml:"routers,omitempty"`
	BBMDs    []BBMDEntry    `yaml:"bbmds,omitempty"`
}

// DeviceEntry is one item of the devices list.
type DeviceEntry struct {
	ID               Scalar `yaml:"id,omitempty"`
	Instance         Scalar `yaml:"instance,omitempty"`
	VendorID         Scalar `yaml:"vendor_id,omitempty"`
	Address          Scalar `yaml:"address,omitempty"`
	Network          Scalar `yaml:"network,omitempty"`
	Subnet           Scalar `yaml:"subnet,omitempty"`
	Label            string `yaml:"label,omitempty"`
	ModelName        string `yaml:"model_name,omitempty"`
	DeviceName       string `yaml:"device_name,omitempty"`
	FirmwareRevision Scalar `yaml:"firmware_revision,omitempty"`
}

// NetworkEntry is one item of the networks list.
type NetworkEntry struct {
	ID     Scalar `yaml:"id,omitempty"`
	Number Scalar `yaml:"number,omitempty"`
	Label  string `yaml:"label,omitempty"`
	Type   string `yaml:"type,omitempty"`
}

// SubnetEntry is one item of the subnets list.
type SubnetEntry struct {
	ID      Scalar `yaml:"id,omitempty"`
	Address string `yaml:"address,omitempty"`
	Network Scalar `yaml:"network,omitempty"`
}

// RouterEntry is one item of the routers list.
type RouterEntry struct {
	ID             Scalar   `yaml:"id,omitempty"`
	Networks       []Scalar `yaml:"networks,omitempty"`
	Unidirectional bool     `yaml:"unidirectional,omitempty"`
}

// BBMDEntry is one item of the bbmds list.
type BBMDEntry struct {
	ID      Scalar   `yaml:"id,omitempty"`
	Subnet  Scalar   `yaml:"subnet,omitempty"`
	Address Scalar   `yaml:"address,omitempty"`
	BDT     []Scalar `yaml:"bdt,omitempty"`
}
