package app_info

// NAME the name of our application
const NAME = "aegis"

// VERSION the current version of our application
var VERSION = "v0.1.0"
