// Package postprocess provides the built-in post-processors.
//
// Their relative order comes only from their priorities, so third-party
// post-processors can be interleaved by choosing a priority between them.
package postprocess

// Names of the built-in post-processors
const (
	NameAddFileHeader        = "AddFileHeader"
	NameCleanTargetDirectory = "CleanTargetDirectory"
	NameConvertLineEndings   = "ConvertLineEndings"
	NameMergeFilesByName     = "MergeFilesByName"
	NameWriteToDisk          = "WriteToDisk"
)

// Priorities of the built-in post-processors
const (
	PriorityAddFileHeader        = 0
	PriorityCleanTargetDirectory = 94
	PriorityConvertLineEndings   = 95
	PriorityMergeFilesByName     = 99
	PriorityWriteToDisk          = 100
)
