// Package email is the delivery collaborator for the reset-session
// protocol. It exposes a transport-agnostic EmailSender interface with two
// implementations (Postmark for production, a filesystem DevSender for
// local work) and a ResetLinkMailer that renders the carrier token into the
// reset email. Delivery is invoked by the protocol but is not part of it:
// failures here never change what the reset initiator observes.
package email
