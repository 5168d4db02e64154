package dto

// AsanaProjectResponse un proyecto Asana (proxy de solo lectura).
type AsanaProjectResponse struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// AsanaCustomFieldResponse un custom field de una tarea Asana.
type AsanaCustomFieldResponse struct {
	Name         string `json:"name"`
	DisplayValue string `json:"display_value"`
}

// AsanaTaskResponse una tarea Asana con los campos que consume la UI.
type AsanaTaskResponse struct {
	GID          string                     `json:"gid"`
	Name         string                     `json:"name"`
	Completed    bool                       `json:"completed"`
	Assignee     string                     `json:"assignee,omitempty"`
	DueOn        string                     `json:"due_on,omitempty"`
	Section      string                     `json:"section,omitempty"`
	CustomFields []AsanaCustomFieldResponse `json:"custom_fields,omitempty"`
}
