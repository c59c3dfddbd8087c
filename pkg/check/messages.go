package check

// Diagnostic messages.
const (
	MsgTypeMismatch     = "Expected type %s, found type %s"
	MsgUnknownField     = "Unknown field '%s'"
	MsgUnknownVariable  = "Unknown variable '%s'"
	MsgTableNotFound    = "Table '%s' not found"
	MsgFieldNotExist    = "Field %s does not exist"
	MsgNoFields         = "Type %s has no fields"
	MsgNotIndexable     = "Cannot index type %s"
	MsgDuplicateEntry   = "Duplicated entry for field '%s'"
	MsgPreviousEntry    = "Field '%s' previously defined here"
	MsgMissingFields    = "Missing fields: %s"
	MsgMissingValues    = "Missing value for: %s"
	MsgExpectedNumeric  = "Expected numeric type, found %s"
	MsgCannotCompare    = "Cannot compare %s and %s"
	MsgUnknownFunction  = "Function '%s' does not exist"
	MsgMissingArgument  = "Function '%s' is missing 1 argument: '%s'"
	MsgMissingArguments = "Function '%s' is missing %d arguments: %s"
	MsgTooManyArguments = "Function '%s' does not have %d arguments"
	MsgInvalidDateTime  = "Invalid datetime '%s'"
	MsgInvalidRecordID  = "Invalid record id '%s'"
	MsgTableNotOnDB     = "Table not defined on database"
	MsgDefineNoTable    = "Table not found"
	MsgParentNotFound   = "Field %s not found"
	MsgParentNotObject  = "Field %s is not an object"
	MsgFieldMismatch    = "Field doesn't match database, remote: %s, local: %s"
	MsgFieldNotOnDB     = "Field not defined on database"
)
