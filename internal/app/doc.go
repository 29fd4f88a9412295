// Package app provides the application service layer.
//
// TaskService owns the task use cases: listing and creating tasks. It turns
// raw request bodies into validated domain input and maps repository
// failures to structured errors. It depends on domain interfaces only.
package app
