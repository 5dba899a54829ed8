// ABOUTME: Version information for the visualizer
// ABOUTME: Reported in startup logs and the -version flag
package version

const (
	// Version is the release version
	Version = "0.1.0"

	// Product is the product name
	Product = "Resonate Visualizer"
)

// String returns the product name followed by the version
func String() string {
	return Product + " " + Version
}
