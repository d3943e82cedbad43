// Package mcp exposes plugin discovery and analysis as MCP (Model Context
// Protocol) tools.
package mcp

import (
	"context"
	"strings"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/vamphost/internal/app"
	"github.com/felixgeelhaar/vamphost/pkg/vamp"
)

// ListPluginsInput is the input for the vamp_list_plugins tool.
type ListPluginsInput struct {
	Library string `json:"library,omitempty" jsonschema:"description=Only list plugins from libraries whose name contains this text"`
}

// ListPluginsOutput is the output for the vamp_list_plugins tool.
type ListPluginsOutput struct {
	Libraries []LibraryEntry `json:"libraries"`
	Plugins   int            `json:"plugins"`
	Errors    []string       `json:"errors,omitempty"`
}

// LibraryEntry represents one plugin library.
type LibraryEntry struct {
	Path    string        `json:"path"`
	Plugins []PluginEntry `json:"plugins"`
}

// PluginEntry represents a single plugin in a listing.
type PluginEntry struct {
	Key         string   `json:"key"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Maker       string   `json:"maker,omitempty"`
	InputDomain string   `json:"input_domain,omitempty"`
	Outputs     []string `json:"outputs,omitempty"`
	Category    string   `json:"category,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// PluginInfoInput is the input for the vamp_plugin_info tool.
type PluginInfoInput struct {
	Key string `json:"key" jsonschema:"required,description=Plugin key in library:identifier form"`
}

// PluginInfoOutput is the output for the vamp_plugin_info tool.
type PluginInfoOutput struct {
	Key      string    `json:"key"`
	Info     vamp.Info `json:"info"`
	Domain   string    `json:"input_domain"`
	Category []string  `json:"category,omitempty"`
}

// CategoriesInput is the input for the vamp_plugin_categories tool.
type CategoriesInput struct {
	Prefix string `json:"prefix,omitempty" jsonschema:"description=Only include categories starting with this path such as 'Time > Onsets'"`
}

// CategoriesOutput is the output for the vamp_plugin_categories tool.
type CategoriesOutput struct {
	Categories    map[string][]string `json:"categories"`
	Uncategorised []string            `json:"uncategorised,omitempty"`
}

// SearchPathInput is the input for the vamp_search_path tool.
type SearchPathInput struct{}

// SearchPathOutput is the output for the vamp_search_path tool.
type SearchPathOutput struct {
	Directories []string `json:"directories"`
}

// RunInput is the input for the vamp_run tool.
type RunInput struct {
	Key       string `json:"key" jsonschema:"required,description=Plugin key in library:identifier form"`
	AudioPath string `json:"audio_path" jsonschema:"required,description=Path to a PCM WAV file"`
	Output    string `json:"output,omitempty" jsonschema:"description=Output identifier or index (default: first output)"`
	BlockSize int    `json:"block_size,omitempty" jsonschema:"description=Block size in frames (default: plugin preference)"`
	StepSize  int    `json:"step_size,omitempty" jsonschema:"description=Step size in frames (default: plugin preference)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"description=Maximum number of features returned (default: 1000)"`
}

// RunOutput is the output for the vamp_run tool.
type RunOutput struct {
	RunID     string        `json:"run_id"`
	Output    string        `json:"output"`
	BlockSize int           `json:"block_size"`
	StepSize  int           `json:"step_size"`
	Blocks    int           `json:"blocks"`
	MixedDown bool          `json:"mixed_down,omitempty"`
	Features  []app.Feature `json:"features"`
	Truncated bool          `json:"truncated,omitempty"`
}

// StatusInput is the input for the vamp_status tool.
type StatusInput struct{}

// StatusOutput is the output for the vamp_status tool.
type StatusOutput struct {
	Version    string   `json:"version"`
	Commit     string   `json:"commit"`
	BuildDate  string   `json:"build_date"`
	SDKVersion string   `json:"sdk_version"`
	APIVersion int      `json:"api_version"`
	Backends   []string `json:"backends"`
}

// VersionInfo contains version metadata for the MCP server.
type VersionInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// defaultRunLimit caps vamp_run responses.
const defaultRunLimit = 1000

// RegisterAll registers all MCP tools with the server.
func RegisterAll(srv *mcp.Server, host *app.Host, versionInfo VersionInfo) {
	registerListPluginsTool(srv, host)
	registerPluginInfoTool(srv, host)
	registerCategoriesTool(srv, host)
	registerSearchPathTool(srv, host)
	registerRunTool(srv, host)
	registerStatusTool(srv, host, versionInfo)
}

func registerListPluginsTool(srv *mcp.Server, host *app.Host) {
	srv.Tool("vamp_list_plugins").
		Description("List the audio analysis plugins installed on the plugin search path, grouped by library.").
		ReadOnly().
		Handler(func(ctx context.Context, in ListPluginsInput) (*ListPluginsOutput, error) {
			libs, err := host.Libraries(ctx)
			if err != nil {
				return nil, err
			}

			output := &ListPluginsOutput{Libraries: make([]LibraryEntry, 0, len(libs))}
			for _, lib := range libs {
				if in.Library != "" && !strings.Contains(lib.Path, in.Library) {
					continue
				}
				entry := LibraryEntry{Path: lib.Path, Plugins: make([]PluginEntry, 0, len(lib.Plugins))}
				for _, p := range lib.Plugins {
					entry.Plugins = append(entry.Plugins, toPluginEntry(p))
				}
				output.Plugins += len(entry.Plugins)
				output.Libraries = append(output.Libraries, entry)
			}
			for _, e := range host.DiscoveryErrors() {
				output.Errors = append(output.Errors, e.Error())
			}
			return output, nil
		})
}

func toPluginEntry(p app.PluginSummary) PluginEntry {
	entry := PluginEntry{Key: p.Key.String()}
	if p.Err != nil {
		entry.Error = p.Err.Error()
		return entry
	}
	entry.Name = p.Info.Name
	entry.Description = p.Info.Description
	entry.Maker = p.Info.Maker
	entry.InputDomain = p.Info.InputDomain.String()
	entry.Category = strings.Join(p.Category, " > ")
	for _, o := range p.Info.Outputs {
		entry.Outputs = append(entry.Outputs, o.Identifier)
	}
	return entry
}

func registerPluginInfoTool(srv *mcp.Server, host *app.Host) {
	srv.Tool("vamp_plugin_info").
		Description("Describe one plugin: parameters, outputs, preferred block and step sizes, channel range and category.").
		ReadOnly().
		Handler(func(ctx context.Context, in PluginInfoInput) (*PluginInfoOutput, error) {
			if err := ValidatePluginInfoInput(&in); err != nil {
				return nil, err
			}
			summary, err := host.PluginInfo(ctx, in.Key)
			if err != nil {
				return nil, err
			}
			return &PluginInfoOutput{
				Key:      summary.Key.String(),
				Info:     summary.Info,
				Domain:   summary.Info.InputDomain.String(),
				Category: summary.Category,
			}, nil
		})
}

func registerCategoriesTool(srv *mcp.Server, host *app.Host) {
	srv.Tool("vamp_plugin_categories").
		Description("Group the installed plugins by the categories their libraries declare.").
		ReadOnly().
		Handler(func(ctx context.Context, in CategoriesInput) (*CategoriesOutput, error) {
			cats, err := host.Categories(ctx)
			if err != nil {
				return nil, err
			}

			output := &CategoriesOutput{Categories: make(map[string][]string)}
			for _, c := range cats {
				if len(c.Category) == 0 {
					if in.Prefix == "" {
						output.Uncategorised = append(output.Uncategorised, c.Key.String())
					}
					continue
				}
				path := strings.Join(c.Category, " > ")
				if in.Prefix != "" && !strings.HasPrefix(path, in.Prefix) {
					continue
				}
				output.Categories[path] = append(output.Categories[path], c.Key.String())
			}
			return output, nil
		})
}

func registerSearchPathTool(srv *mcp.Server, host *app.Host) {
	srv.Tool("vamp_search_path").
		Description("Show the directories searched for plugin libraries, in scan order.").
		ReadOnly().
		Handler(func(_ context.Context, _ SearchPathInput) (*SearchPathOutput, error) {
			return &SearchPathOutput{Directories: host.SearchPath()}, nil
		})
}

func registerRunTool(srv *mcp.Server, host *app.Host) {
	srv.Tool("vamp_run").
		Description("Run a plugin over a WAV file and return the features of one output with their timestamps.").
		ReadOnly().
		Handler(func(ctx context.Context, in RunInput) (*RunOutput, error) {
			if err := ValidateRunInput(&in); err != nil {
				return nil, err
			}
			limit := in.Limit
			if limit <= 0 {
				limit = defaultRunLimit
			}

			output := &RunOutput{Features: []app.Feature{}}
			res, err := host.Run(ctx, app.RunRequest{
				Key:       in.Key,
				Output:    in.Output,
				AudioPath: in.AudioPath,
				BlockSize: in.BlockSize,
				StepSize:  in.StepSize,
			}, func(f app.Feature) error {
				if len(output.Features) >= limit {
					output.Truncated = true
					return nil
				}
				output.Features = append(output.Features, f)
				return nil
			})
			if err != nil {
				return nil, err
			}

			output.RunID = res.RunID
			output.Output = res.Output.Identifier
			output.BlockSize = res.Sizes.BlockSize
			output.StepSize = res.Sizes.StepSize
			output.Blocks = res.Stats.Blocks
			output.MixedDown = res.MixedDown
			return output, nil
		})
}

func registerStatusTool(srv *mcp.Server, host *app.Host, versionInfo VersionInfo) {
	srv.Tool("vamp_status").
		Description("Get vamphost version information and the enabled plugin backends.").
		ReadOnly().
		Handler(func(_ context.Context, _ StatusInput) (*StatusOutput, error) {
			output := &StatusOutput{
				Version:    versionInfo.Version,
				Commit:     versionInfo.Commit,
				BuildDate:  versionInfo.BuildDate,
				SDKVersion: vamp.SDKVersion,
				APIVersion: vamp.APIVersion,
			}
			for _, k := range host.Backends() {
				output.Backends = append(output.Backends, string(k))
			}
			return output, nil
		})
}
