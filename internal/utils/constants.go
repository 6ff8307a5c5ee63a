package utils

// LoggerInitializationFailedMessageFormat reports a failure to build the application logger.
const LoggerInitializationFailedMessageFormat = "logger initialization failed: %w"

// ApplicationExecutionFailedMessage prefixes fatal command execution errors.
const ApplicationExecutionFailedMessage = "Application execution failed"

// ConfigFileName is the name of the optional configuration file, looked up
// in the user's home directory and in the working directory.
const ConfigFileName = ".flattex.yaml"
