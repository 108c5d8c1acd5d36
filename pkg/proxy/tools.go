package proxy

// Tool is one remotely callable operation advertised over the MCP surface.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

const (
	toolAnalyze          = "analyze_maven_dependency"
	toolDecompile        = "decompile_class"
	toolFindAndDecompile = "find_and_decompile"
)

func dependenciesSchema() map[string]any {
	return map[string]any{
		"type":        "array",
		"description": "Maven dependency list",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"groupId":    map[string]any{"type": "string", "description": "Maven groupId"},
				"artifactId": map[string]any{"type": "string", "description": "Maven artifactId"},
				"version":    map[string]any{"type": "string", "description": "version"},
			},
			"required": []string{"groupId", "artifactId", "version"},
		},
	}
}

func repositoriesSchema() map[string]any {
	return map[string]any{
		"type":        "array",
		"description": "Extra Maven repositories (private repos, SNAPSHOT versions)",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":        map[string]any{"type": "string"},
				"name":      map[string]any{"type": "string"},
				"url":       map[string]any{"type": "string"},
				"snapshots": map[string]any{"type": "string", "default": "true"},
			},
		},
	}
}

func targetClassesSchema() map[string]any {
	return map[string]any{
		"type":        "array",
		"description": "Class names to locate (simple names are enough)",
		"items":       map[string]any{"type": "string"},
	}
}

func toolCatalog() []Tool {
	return []Tool{
		{
			Name: toolAnalyze,
			Description: "Resolve Maven coordinates, download the jars and locate the requested " +
				"classes inside them. Returns found_classes, jar_files, the work_dir holding the " +
				"downloads and a summary with missing_names.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"dependencies":   dependenciesSchema(),
					"target_classes": targetClassesSchema(),
					"repositories":   repositoriesSchema(),
					"work_dir":       map[string]any{"type": "string", "description": "Optional work directory path"},
				},
				"required": []string{"dependencies", "target_classes"},
			},
		},
		{
			Name: toolDecompile,
			Description: "Disassemble one class from an already-downloaded jar. " +
				"Returns class_name, jar_path, class_file_path and decompiled_code.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"jar_path":        map[string]any{"type": "string", "description": "Absolute jar path"},
					"class_file_path": map[string]any{"type": "string", "description": "Entry path inside the jar, e.g. com/example/MyClass.class"},
				},
				"required": []string{"jar_path", "class_file_path"},
			},
		},
		{
			Name: toolFindAndDecompile,
			Description: "One-shot pipeline: resolve dependencies, locate the target classes and " +
				"disassemble every match. A class that fails to disassemble is reported inline in " +
				"decompiled_classes without failing the call.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"dependencies":   dependenciesSchema(),
					"target_classes": targetClassesSchema(),
					"repositories":   repositoriesSchema(),
				},
				"required": []string{"dependencies", "target_classes"},
			},
		},
	}
}
