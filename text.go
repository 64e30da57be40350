package main

// User-facing copy returned by the API.
const (
	MissingFieldsText    = "All fields are required."
	SendFailedText       = "Failed to send. Please try again later."
	NotFoundText         = "Not found."
	PreviewNotFoundText  = "Preview message not found."
	InvalidLoginText     = "Invalid credentials"
	UnauthorizedText     = "Authentication required"
	StatsFailedText      = "Failed to load statistics"
	VisitorsFailedText   = "Failed to load visitors"
	ContactLogFailedText = "Failed to load contact log"
	DeleteFailedText     = "Failed to delete preview message"
	PreviewFailedText    = "Failed to load preview message"

	PrivacyNotice = `This site records page views with a salted hash of your IP address,
never the address itself. Requests sent with "DNT: 1" are not recorded.
Records older than twelve months are deleted automatically. Messages sent
through the contact form are forwarded to the site owner by email and are
not kept on this server unless no mail server is configured, in which case
they are held for preview.`
)
