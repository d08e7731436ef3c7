package aidb

// Version is the release of the library and the aidb command.
const Version = "0.3.0"
