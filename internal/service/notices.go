package service

import (
	"strings"

	"cafeDesk/internal/dto"
)

var (
	noticeRegistered = dto.SuccessNotice("Registration Successful!",
		"We'll send you a confirmation email shortly with event details.")
	noticeUploadFailed = dto.ErrorNotice("Upload Failed",
		"Your registration will be saved without the payment screenshot. Please send it to us directly.")

	noticeConfigSaved = dto.SuccessNotice("Configuration Saved",
		"Coffee tasting event configuration has been updated successfully")
	noticeConfigSaveFailed = dto.ErrorNotice("Save Failed", "Failed to save configuration. Please try again.")
	noticeConfigLoadFailed = dto.ErrorNotice("Error", "Failed to load current configuration")

	noticeTermsSaved      = dto.SuccessNotice("Terms Updated", "Terms and agreements have been updated successfully")
	noticeTermsSaveFailed = dto.ErrorNotice("Save Failed", "Failed to save terms and agreements. Please try again.")
	noticeTermsLoadFailed = dto.ErrorNotice("Error", "Failed to load current terms and agreements")

	noticeParticipantsLoadFailed = dto.ErrorNotice("Error", "Failed to load participants data")
	noticeDeleteFailed           = dto.ErrorNotice("Delete Failed", "Failed to delete participant. Please try again.")
	noticeFeedbackLoadFailed     = dto.ErrorNotice("Error", "Failed to load feedback data")
	noticeVisitorsLoadFailed     = dto.ErrorNotice("Error", "Failed to load visitor data")

	noticeLoggedOut = dto.SuccessNotice("Logged Out", "You have been logged out successfully")
)

func registrationFailedNotice(msg string) dto.Notice {
	if msg == "" {
		msg = "Please try again or contact us directly."
	}
	return dto.ErrorNotice("Registration Failed", msg)
}

func participantDeletedNotice(name string) dto.Notice {
	return dto.SuccessNotice("Participant Deleted", name+"'s registration has been removed successfully.")
}

func defaultsAppliedNotice(fields []string) dto.Notice {
	return dto.SuccessNotice("Defaults Applied",
		"The public page shows default values for zero "+strings.Join(fields, ", ")+".")
}
