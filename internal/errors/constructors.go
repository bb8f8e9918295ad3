package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *ClassifiedError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(path string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration file invalid").
		WithContext("path", path)
}

// Build pipeline errors

func StageFailed(stage string, category ErrorCategory, cause error) *ClassifiedError {
	return Wrap(cause, category, SeverityFatal, "build stage failed").
		WithContext("stage", stage)
}

func PublishFailed(operation string, cause error) *ClassifiedError {
	return Wrap(cause, CategoryPublish, SeverityFatal, "publish failed").
		WithContext("operation", operation)
}

func LinkCheckFailed(broken int) *ClassifiedError {
	return New(CategoryValidation, SeverityError, "broken links found").
		WithContext("broken", broken)
}
