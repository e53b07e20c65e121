package notification

// NotifySuccess records an informational success toast
func (s *Service) NotifySuccess(title, message string) {
	_, _ = s.CreateWithComponent(TypeInfo, PriorityLow, title, message, "form")
}

// NotifyWarning records a non-fatal warning toast
func (s *Service) NotifyWarning(title, message string) {
	_, _ = s.CreateWithComponent(TypeWarning, PriorityMedium, title, message, "form")
}

// NotifyFailure records an error toast carrying the collaborator's message
func (s *Service) NotifyFailure(title, message string) {
	_, _ = s.CreateWithComponent(TypeError, PriorityHigh, title, message, "form")
}
