package contracts

// Well-known context tag keys. Tags under these keys describe the ambient
// context an envelope was produced in rather than the telemetry item itself.
const (
	ApplicationVersion = "ai.application.ver"
	DeviceID           = "ai.device.id"
	DeviceOSVersion    = "ai.device.osVersion"
	CloudRole          = "ai.cloud.role"
	CloudRoleInstance  = "ai.cloud.roleInstance"
	OperationID        = "ai.operation.id"
	OperationName      = "ai.operation.name"
	OperationParentID  = "ai.operation.parentId"
	SessionID          = "ai.session.id"
	UserID             = "ai.user.id"
	InternalSDKVersion = "ai.internal.sdkVersion"
)
