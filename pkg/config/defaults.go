package config

// Defaults holds the pipeline-wide tunables every stage reads instead of
// hardcoding policy constants. All fields have sane zero-value fallbacks
// applied in ResolveDefaults.
type Defaults struct {
	MaxBatchSize                 int     `yaml:"max_batch_size"`
	MinBatchSize                 int     `yaml:"min_batch_size"`
	MaxParallelStage1            int     `yaml:"max_parallel_stage1"`
	MaxDiffBytesPerFile           int     `yaml:"max_diff_bytes_per_file"`
	MaxHunkLines                 int     `yaml:"max_hunk_lines"`
	ToolBudgetStage1              int     `yaml:"tool_budget_stage1"`
	ToolBudgetStage3              int     `yaml:"tool_budget_stage3"`
	CrossBatchDedupThreshold      float64 `yaml:"cross_batch_dedup_threshold"`
	ReconcileSimilarityThreshold  float64 `yaml:"reconcile_similarity_threshold"`
	WithinFileDedupThreshold      float64 `yaml:"within_file_dedup_threshold"`
	LineCorrectionWindow          int     `yaml:"line_correction_window"`
	StructuredOutputRepairRetries int     `yaml:"structured_output_repair_retries"`
}

// ResolveDefaults fills any zero-valued field with the built-in default,
// mirroring the teacher's "YAML overrides built-in" resolution in loader.go.
func ResolveDefaults(d *Defaults) *Defaults {
	if d == nil {
		d = &Defaults{}
	}
	if d.MaxBatchSize == 0 {
		d.MaxBatchSize = 7
	}
	if d.MinBatchSize == 0 {
		d.MinBatchSize = 3
	}
	if d.MaxParallelStage1 == 0 {
		d.MaxParallelStage1 = 5
	}
	if d.MaxDiffBytesPerFile == 0 {
		d.MaxDiffBytesPerFile = 25 * 1024
	}
	if d.MaxHunkLines == 0 {
		d.MaxHunkLines = 1000
	}
	if d.ToolBudgetStage1 == 0 {
		d.ToolBudgetStage1 = 3
	}
	if d.ToolBudgetStage3 == 0 {
		d.ToolBudgetStage3 = 5
	}
	if d.CrossBatchDedupThreshold == 0 {
		d.CrossBatchDedupThreshold = 0.75
	}
	if d.ReconcileSimilarityThreshold == 0 {
		d.ReconcileSimilarityThreshold = 0.70
	}
	if d.WithinFileDedupThreshold == 0 {
		d.WithinFileDedupThreshold = 0.75
	}
	if d.LineCorrectionWindow == 0 {
		d.LineCorrectionWindow = 15
	}
	if d.StructuredOutputRepairRetries == 0 {
		d.StructuredOutputRepairRetries = 2
	}
	return d
}
