package loam

// Metadata is the frontmatter of a definition document. The body of the
// document holds the definition itself, as MDSL or JSON.
type Metadata struct {
	// ID names the definition. Defaults to the file name without extension.
	ID          string `json:"id" mapstructure:"id"`
	Description string `json:"description,omitempty" mapstructure:"description"`
}
