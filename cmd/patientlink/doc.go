// Command patientlink groups uploaded spreadsheet rows and files into patient
// candidates, applies reviewer corrections, and keeps an optional local
// archive of runs for review.
//
// Typical flow:
//
//	patientlink group --input body.json --archive
//	patientlink runs list
//	patientlink correct --run <id> --ops ops.yaml
//	patientlink summary --run <id>
//
// Results print as tables on a terminal and as JSON when piped; --output
// forces either.
package main
