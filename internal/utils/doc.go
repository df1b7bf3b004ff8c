// Package utils provides shared utility functions for prfvault.
//
// # System Utilities
//
// Functions for interacting with the operating system:
//   - GetUsername: returns the current system username
//   - GetHostname: returns the system hostname
//   - GenerateNickname: derives a default credential nickname
//
// # String Utilities
//
// Functions for validating and formatting names:
//   - IsValidNickname: checks a credential nickname
//   - FormatList: formats names or paths as a bullet list
//
// # I/O Utilities
//
// Functions for reading piped input:
//   - ReadStdin: reads a secret piped on standard input
//
// # Terminal Utilities
//
// Functions for terminal detection and interaction:
//   - ReadSecretFromTTY: reads a secret without echo
//   - WaitForEnterFromTTY: confirms user presence before a ceremony
package utils
