package errors

// Stable machine codes reported on terminal task states and HTTP error bodies.
const (
	CodeNoFile            = "NO_FILE"
	CodeFileTooLarge      = "FILE_TOO_LARGE"
	CodeInvalidFormat     = "INVALID_FORMAT"
	CodeInvalidLevel      = "INVALID_LEVEL"
	CodeMissingTaskID     = "MISSING_TASK_ID"
	CodeInvalidTaskID     = "INVALID_TASK_ID"
	CodeTaskExists        = "TASK_EXISTS"
	CodeTooManyFiles      = "TOO_MANY_FILES"
	CodeInvalidFilename   = "INVALID_FILENAME"
	CodeFileCorrupted     = "FILE_CORRUPTED"
	CodeEntryOptimization = "ENTRY_OPTIMIZATION_FAILED"
	CodePackFailed        = "PACK_FAILED"
	CodeTaskNotFound      = "TASK_NOT_FOUND"
	CodeTaskExpired       = "TASK_EXPIRED"
	CodeArtifactNotFound  = "ARTIFACT_NOT_FOUND"
	CodeStorage           = "STORAGE_ERROR"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeRateLimited       = "TOO_MANY_REQUESTS"
	CodeCompression       = "COMPRESSION_ERROR"
)

type message struct {
	message    string
	suggestion string
}

var messages = map[string]message{
	CodeNoFile: {
		"no file was uploaded",
		"select an EPUB file to compress",
	},
	CodeFileTooLarge: {
		"the file exceeds the maximum allowed size",
		"split the book or compress its images before uploading",
	},
	CodeInvalidFormat: {
		"the file is not an EPUB archive",
		"make sure the file is a valid .epub document",
	},
	CodeInvalidLevel: {
		"unknown compression level",
		"use one of low, medium or high",
	},
	CodeMissingTaskID: {
		"a task id is required",
		"pass the task id returned by the compress call",
	},
	CodeInvalidTaskID: {
		"the task id contains unsupported characters",
		"use letters, digits, dashes and underscores only",
	},
	CodeTaskExists: {
		"a task with this id already exists",
		"omit the task id to have one generated",
	},
	CodeTooManyFiles: {
		"too many files in one batch",
		"split the upload into smaller batches",
	},
	CodeInvalidFilename: {
		"invalid download file name",
		"use the download url returned with the result",
	},
	CodeFileCorrupted: {
		"the archive is corrupted and cannot be read",
		"re-export the EPUB from its authoring tool and try again",
	},
	CodeEntryOptimization: {
		"an archive entry could not be optimized",
		"the original entry was kept",
	},
	CodePackFailed: {
		"the compressed archive could not be written",
		"try again with a lower compression level",
	},
	CodeTaskNotFound: {
		"task not found",
		"check the task id or start a new compression",
	},
	CodeTaskExpired: {
		"the task has expired",
		"start a new compression",
	},
	CodeArtifactNotFound: {
		"the compressed file is no longer available",
		"files can be downloaded once; compress the book again",
	},
	CodeStorage: {
		"temporary storage failure",
		"try again in a moment",
	},
	CodeInvalidTransition: {
		"the task is already finished",
		"start a new compression",
	},
	CodeRateLimited: {
		"too many requests",
		"wait a minute before uploading again",
	},
	CodeCompression: {
		"compression failed",
		"try again or use a different compression level",
	},
}
