package services

// Services defined in this package:
// - SubmissionService: Accepts parking applications and manages the stored roster of documents
// - ExportService: Renders the application roster as an Excel workbook
// - ReviewService: Drives the student request review lifecycle
// - RosterService: Manages reviewer/administrator user accounts
// - AuthService: Handles login, token refresh and registration
