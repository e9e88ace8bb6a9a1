package logging

// Standard field names, so log output stays greppable across components.
const (
	FieldFile        = "file_path"
	FieldStage       = "stage"
	FieldSheet       = "sheet"
	FieldLine        = "line"
	FieldRaw         = "raw"
	FieldKey         = "key"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldReason      = "reason"
	FieldStrategy    = "strategy"
	FieldCount       = "count"
	FieldInputFile   = "input_file"
	FieldOutputFile  = "output_file"
)
