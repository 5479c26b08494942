// Package cli implements the interactive command-line client for deadbox.
//
// The App wires the session database, the REST client and the client
// services. Run starts a REPL; RunCommand executes a single command and is
// meant for scripted use, e.g. a daily "checkin" from cron so inactivity
// triggers do not fire while the owner is alive.
//
// Commands
//
//	register            create an account (name, email, password, family key and email)
//	login               authenticate and save the session locally
//	logout              forget the local session
//	me                  show the account and last activity time
//	checkin             record activity now
//	list                list letters with status and release condition
//	attach <id> <file>  upload a file as a letter's attachment
//	help, exit
package cli
