package fsmodel

import "strings"

// typeLabels maps lowercase file extensions (possibly multi-part, e.g.
// "tar.gz") to the label shown for that file type. Longest matching suffix
// wins, so "world.tar.gz" is an Archive rather than a Gzip file.
var typeLabels = map[string]string{
	"jar":        "Java Archive",
	"zip":        "Archive",
	"tar":        "Archive",
	"tar.gz":     "Archive",
	"tar.xz":     "Archive",
	"tar.zst":    "Archive",
	"tgz":        "Archive",
	"gz":         "Gzip",
	"rar":        "Archive",
	"7z":         "Archive",
	"png":        "Image",
	"jpg":        "Image",
	"jpeg":       "Image",
	"gif":        "Image",
	"webp":       "Image",
	"svg":        "Image",
	"txt":        "Text",
	"md":         "Markdown",
	"json":       "JSON",
	"json5":      "JSON",
	"yml":        "YAML",
	"yaml":       "YAML",
	"toml":       "TOML",
	"properties": "Properties",
	"cfg":        "Config",
	"conf":       "Config",
	"ini":        "Config",
	"log":        "Log",
	"log.gz":     "Log",
	"sh":         "Shell Script",
	"bat":        "Batch Script",
	"ps1":        "PowerShell Script",
	"js":         "JavaScript",
	"ts":         "TypeScript",
	"lua":        "Lua Script",
	"py":         "Python Script",
	"db":         "Database",
	"sqlite":     "Database",
	"dat":        "Data",
	"dat_old":    "Data",
	"nbt":        "NBT Data",
	"mca":        "Region Data",
	"mcr":        "Region Data",
	"schematic":  "Schematic",
	"schem":      "Schematic",
	"lock":       "Lock",
	"pem":        "Certificate",
	"crt":        "Certificate",
}

// TypeLabel classifies an entry for display. Directories are always "Folder";
// files are looked up by extension with "File" as the fallback.
func TypeLabel(name string, isDirectory bool) string {
	if isDirectory {
		return "Folder"
	}

	lower := strings.ToLower(name)
	parts := strings.Split(lower, ".")
	// Try the longest extension first: for "a.tar.gz" check "tar.gz", then "gz".
	for i := 1; i < len(parts); i++ {
		ext := strings.Join(parts[i:], ".")
		if label, ok := typeLabels[ext]; ok {
			return label
		}
	}
	return "File"
}
