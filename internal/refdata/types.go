package refdata

// File is one reference-data seed document.
type File struct {
	APIVersion string       `yaml:"apiVersion"`
	Kind       string       `yaml:"kind"`
	Genres     []GenreSeed  `yaml:"genres,omitempty"`
	Aliases    []AliasSeed  `yaml:"aliases,omitempty"`
	Bundles    []BundleSeed `yaml:"bundles,omitempty"`
}

// GenreSeed maps a raw label to a canonical genre name.
type GenreSeed struct {
	Raw   string `yaml:"raw"`
	Canon string `yaml:"canon"`
}

// AliasSeed maps a canonicalized content title to a stable grouping key.
type AliasSeed struct {
	Title string `yaml:"title"`
	Key   string `yaml:"key"`
}

// BundleSeed maps a raw app bundle id to its canonical bundle.
type BundleSeed struct {
	Raw        string `yaml:"raw"`
	Bundle     string `yaml:"bundle"`
	AppName    string `yaml:"appName"`
	Publisher  string `yaml:"publisher"`
	MaskReason string `yaml:"maskReason,omitempty"`
}

// FileWithPath pairs a parsed seed document with its source path.
type FileWithPath struct {
	File *File
	Path string
}

// ValidationError describes one problem found in a seed file.
type ValidationError struct {
	File    string
	Path    string
	Message string
}
